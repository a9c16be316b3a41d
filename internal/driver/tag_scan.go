package driver

// attrLoc is the byte layout of one attribute inside a raw start tag.
type attrLoc struct {
	nameStart, nameEnd   int
	valueStart, valueEnd int // -1 for bare attributes
}

// scanTagAttrs finds attribute positions in a raw start tag such as
// `<a href="x" disabled>`. The tokenizer gives decoded values but no offsets.
func scanTagAttrs(raw []byte) []attrLoc {
	i := 1
	for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '>' && raw[i] != '/' {
		i++
	}
	var locs []attrLoc
	for i < len(raw) {
		for i < len(raw) && (isTagSpace(raw[i]) || raw[i] == '/') {
			i++
		}
		if i >= len(raw) || raw[i] == '>' {
			break
		}
		loc := attrLoc{nameStart: i, valueStart: -1, valueEnd: -1}
		i++ // первый символ имени может быть '='
		for i < len(raw) && !isTagSpace(raw[i]) && raw[i] != '=' && raw[i] != '>' && raw[i] != '/' {
			i++
		}
		loc.nameEnd = i
		j := i
		for j < len(raw) && isTagSpace(raw[j]) {
			j++
		}
		if j < len(raw) && raw[j] == '=' {
			j++
			for j < len(raw) && isTagSpace(raw[j]) {
				j++
			}
			switch {
			case j < len(raw) && (raw[j] == '"' || raw[j] == '\''):
				q := raw[j]
				j++
				loc.valueStart = j
				for j < len(raw) && raw[j] != q {
					j++
				}
				loc.valueEnd = j
				if j < len(raw) {
					j++
				}
			default:
				loc.valueStart = j
				for j < len(raw) && !isTagSpace(raw[j]) && raw[j] != '>' {
					j++
				}
				loc.valueEnd = j
			}
			i = j
		}
		locs = append(locs, loc)
	}
	return locs
}

func isTagSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
