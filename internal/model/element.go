package model

import (
	"errors"
	"fmt"
)

// ErrUnknownElementType is returned when a string does not name an ElementType.
var ErrUnknownElementType = errors.New("unknown element type")

// ElementType tags a content block in the legacy element sequence.
type ElementType string

const (
	ElementText      ElementType = "text"
	ElementHeader    ElementType = "header"
	ElementSubheader ElementType = "subheader"
	ElementImage     ElementType = "image"
	ElementFile      ElementType = "file"
	ElementReport    ElementType = "report"
	ElementWorkflow  ElementType = "workflow"
	ElementCard      ElementType = "card"
	ElementList      ElementType = "list"
)

// ElementTypes lists every valid ElementType in palette order.
var ElementTypes = []ElementType{
	ElementText,
	ElementHeader,
	ElementSubheader,
	ElementImage,
	ElementFile,
	ElementReport,
	ElementWorkflow,
	ElementCard,
	ElementList,
}

// Valid reports whether t is one of the known element types.
func (t ElementType) Valid() bool {
	for _, known := range ElementTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseElementType converts s into an ElementType.
func ParseElementType(s string) (ElementType, error) {
	t := ElementType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownElementType, s)
	}
	return t, nil
}

// Element is a single typed content block. Content shape is not validated.
type Element struct {
	ID      string      `json:"id"`
	Type    ElementType `json:"type"`
	Content string      `json:"content"`
}
