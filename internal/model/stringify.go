package model

import (
	"fmt"
	"strings"
)

// Stringify renders a model node as compact markup. Text with attributes is
// written as <$text key="value">; attributes are sorted by key. Fragments
// and roots can be rendered without their own tag with StringifyChildren.
func Stringify(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

// StringifyChildren renders the children of e without e itself.
func StringifyChildren(e *Element) string {
	var b strings.Builder
	for _, c := range e.children {
		writeNode(&b, c)
	}
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Text:
		if len(v.attrs) == 0 {
			b.WriteString(v.data)
			return
		}
		b.WriteString("<" + TextName)
		writeAttrs(b, v.attrs)
		b.WriteString(">" + v.data + "</" + TextName + ">")
	case *Element:
		b.WriteString("<" + v.name)
		writeAttrs(b, v.attrs)
		b.WriteString(">")
		for _, c := range v.children {
			writeNode(b, c)
		}
		b.WriteString("</" + v.name + ">")
	}
}

func writeAttrs(b *strings.Builder, a attributes) {
	for _, k := range a.keys() {
		fmt.Fprintf(b, " %s=\"%v\"", k, a[k])
	}
}
