package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Разметка шаблона
	TplInfo               Code = 1000
	TplUnclosedExpression Code = 1001
	TplUnclosedTag        Code = 1002

	// Выражения ${...}
	ExprInfo             Code = 2000
	ExprSyntax           Code = 2001
	ExprUnknownContext   Code = 2002
	ExprEmptyInterpolate Code = 2003

	// Директивы data-sly-*
	DirInfo               Code = 3000
	DirPluginWarning      Code = 3001
	DirUnknownPlugin      Code = 3002
	DirBadValue           Code = 3003
	DirDuplicateAttribute Code = 3004
	DirMissingValue       Code = 3005

	// Ошибки I/O
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Ошибки проекта
	ProjInfo          Code = 5000
	ProjManifestError Code = 5001
	ProjNoTemplates   Code = 5002

	// Наблюдаемость
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	TplInfo:               "Template information",
	TplUnclosedExpression: "Unclosed '${' expression",
	TplUnclosedTag:        "Unclosed start tag",
	ExprInfo:              "Expression information",
	ExprSyntax:            "Malformed expression",
	ExprUnknownContext:    "Unknown markup context",
	ExprEmptyInterpolate:  "Empty expression",
	DirInfo:               "Directive information",
	DirPluginWarning:      "Directive warning",
	DirUnknownPlugin:      "Unknown data-sly directive",
	DirBadValue:           "Directive value must be a single expression",
	DirDuplicateAttribute: "Attribute is already set by another directive",
	DirMissingValue:       "Directive requires a value",
	IOLoadFileError:       "I/O load file error",
	IOCacheError:          "Compilation cache error",
	ProjInfo:              "Project information",
	ProjManifestError:     "Invalid project manifest",
	ProjNoTemplates:       "No templates found",
	ObsInfo:               "Observability information",
	ObsTimings:            "Compilation timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("TPL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("EXP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("DIR%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
