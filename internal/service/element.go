package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"docsai/internal/model"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// RenderKind is the widget a client uses to display an element.
type RenderKind string

const (
	RenderTextarea    RenderKind = "textarea"
	RenderHeading     RenderKind = "heading"
	RenderSubheading  RenderKind = "subheading"
	RenderImage       RenderKind = "image"
	RenderUnsupported RenderKind = "unsupported"
)

var renderers = map[model.ElementType]RenderKind{
	model.ElementText:      RenderTextarea,
	model.ElementHeader:    RenderHeading,
	model.ElementSubheader: RenderSubheading,
	model.ElementImage:     RenderImage,
}

// RenderedElement is an element plus its rendering hint.
type RenderedElement struct {
	model.Element
	Kind        RenderKind `json:"kind"`
	Placeholder string     `json:"placeholder,omitempty"`
}

// RenderElement returns the rendering hint for el. Types without a renderer
// degrade to a visible placeholder.
func RenderElement(el model.Element) RenderedElement {
	if kind, ok := renderers[el.Type]; ok {
		return RenderedElement{Element: el, Kind: kind}
	}
	return RenderedElement{
		Element:     el,
		Kind:        RenderUnsupported,
		Placeholder: fmt.Sprintf("Unsupported element type: %s", el.Type),
	}
}

// ElementSequence is the ordered list of typed blocks of the legacy editor.
type ElementSequence struct {
	mu       sync.Mutex
	elements []model.Element
	newID    func() string
}

func NewElementSequence() *ElementSequence {
	return &ElementSequence{
		newID: func() string { return "element-" + uuid.NewString() },
	}
}

// Insert appends an empty element of type typ.
func (s *ElementSequence) Insert(typ model.ElementType) (model.Element, error) {
	if !typ.Valid() {
		return model.Element{}, fmt.Errorf("%w: %q", model.ErrUnknownElementType, string(typ))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	el := model.Element{ID: s.newID(), Type: typ}
	s.elements = append(s.elements, el)
	return el, nil
}

// Update replaces an element's content. It reports false when id is unknown.
func (s *ElementSequence) Update(id, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.elements[i].Content = content
	return true
}

// Delete removes an element. It reports false when id is unknown.
func (s *ElementSequence) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	return true
}

// Reorder moves the element at from to position to. Every other element keeps
// its relative order.
func (s *ElementSequence) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.elements)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d in %d elements", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	el := s.elements[from]
	if from < to {
		copy(s.elements[from:to], s.elements[from+1:to+1])
	} else {
		copy(s.elements[to+1:from+1], s.elements[to:from])
	}
	s.elements[to] = el
	return nil
}

// Get returns the element with id.
func (s *ElementSequence) Get(id string) (model.Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.elements[i], true
	}
	return model.Element{}, false
}

// List returns a copy of the sequence in order.
func (s *ElementSequence) List() []model.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Element{}, s.elements...)
}

func (s *ElementSequence) indexOf(id string) int {
	for i := range s.elements {
		if s.elements[i].ID == id {
			return i
		}
	}
	return -1
}
