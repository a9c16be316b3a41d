package render

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/microcosm-cc/bluemonday"

	"slyc/internal/markup"
)

var (
	htmlPolicyOnce sync.Once
	htmlPolicy     *bluemonday.Policy
)

func htmlSanitizer() *bluemonday.Policy {
	htmlPolicyOnce.Do(func() {
		htmlPolicy = bluemonday.UGCPolicy()
	})
	return htmlPolicy
}

var (
	validAttrName    = regexp.MustCompile(`^[a-zA-Z_:][-a-zA-Z0-9_:.]*$`)
	deniedAttrName   = regexp.MustCompile(`(?i)^(style|on.*)$`)
	validElementName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)
	scriptToken      = regexp.MustCompile(`^[a-zA-Z0-9_$.\-+]*$`)
	styleToken       = regexp.MustCompile(`^[-a-zA-Z0-9#.%,()\s]*$`)
	uriScheme        = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.\-]*):`)
)

// uriAttrs are attributes whose values are URIs.
var uriAttrs = map[string]bool{
	"href":       true,
	"src":        true,
	"action":     true,
	"formaction": true,
	"cite":       true,
	"poster":     true,
	"background": true,
	"longdesc":   true,
	"usemap":     true,
}

var allowedSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
	"tel":    true,
}

// XSS escapes v for a markup context. hint is the attribute name for
// attribute values and may be empty.
func XSS(v any, context, hint string) (string, error) {
	mc, err := markup.ParseContext(context)
	if err != nil {
		return "", err
	}
	s := ToString(v)
	switch mc {
	case markup.Text:
		return html.EscapeString(s), nil
	case markup.HTML:
		return htmlSanitizer().Sanitize(s), nil
	case markup.Attribute:
		if uriAttrs[strings.ToLower(hint)] {
			return html.EscapeString(safeURI(s)), nil
		}
		return html.EscapeString(s), nil
	case markup.AttributeName:
		// только проверка: имя уходит как есть, чтобы совпасть с ключом ignored-карты
		if !validAttrName.MatchString(s) || deniedAttrName.MatchString(s) {
			return "", nil
		}
		return s, nil
	case markup.ElementName:
		l := strings.ToLower(s)
		if !validElementName.MatchString(s) || l == "script" || l == "style" {
			return "", nil
		}
		return l, nil
	case markup.URI:
		return html.EscapeString(safeURI(s)), nil
	case markup.Number:
		if f, ok := toFloat(v); ok {
			return formatNumber(f), nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return "0", nil
		}
		return formatNumber(f), nil
	case markup.ScriptToken:
		if !scriptToken.MatchString(s) {
			return "", nil
		}
		return s, nil
	case markup.ScriptString:
		return template.JSEscapeString(s), nil
	case markup.ScriptComment, markup.StyleComment:
		return strings.ReplaceAll(s, "*/", ""), nil
	case markup.StyleToken:
		if !styleToken.MatchString(s) {
			return "", nil
		}
		return s, nil
	case markup.StyleString:
		return cssEscape(s), nil
	case markup.Comment:
		return strings.NewReplacer("--", "", "<", "&lt;", ">", "&gt;").Replace(s), nil
	case markup.Unsafe:
		return s, nil
	}
	return "", fmt.Errorf("xss: unsupported context %s", mc)
}

// safeURI returns s when it is relative or uses an allowed scheme, "" otherwise.
func safeURI(s string) string {
	t := strings.TrimSpace(s)
	m := uriScheme.FindStringSubmatch(t)
	if m == nil {
		return t
	}
	if allowedSchemes[strings.ToLower(m[1])] {
		return t
	}
	return ""
}

func cssEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r == '\\' || r == '"' || r == '\'' || r == '<' || r == '>' || r == '&' || r < 0x20:
			fmt.Fprintf(&sb, "\\%x ", r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
