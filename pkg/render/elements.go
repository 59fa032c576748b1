package render

// inlineElements are rendered without surrounding newlines in pretty mode.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true,
	"br": true, "cite": true, "code": true, "data": true, "dfn": true,
	"em": true, "i": true, "kbd": true, "label": true, "mark": true,
	"q": true, "s": true, "samp": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "time": true, "u": true,
	"var": true, "wbr": true, "option": true, "button": true,
}

func isInlineElement(tag string) bool {
	return inlineElements[tag]
}

// booleanAttrs render as a bare name when their value is empty or equals
// the attribute name.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"ismap":           true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"nomodule":        true,
	"novalidate":      true,
	"open":            true,
	"playsinline":     true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}

// rawTextElements hold text that is written without escaping.
var rawTextElements = map[string]bool{
	"script": true,
	"style":  true,
}
