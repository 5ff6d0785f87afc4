package registry

import (
	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/openedfiles/internal/domain/codec"
)

// fakeHost is a scripted workspace: tests set what is visible and focused.
type fakeHost struct {
	visible    []VisibleSurface
	active     codec.Surface
	activePath string
	missing    map[string]bool

	closed       []string
	closedActive int
	opened       []string
	notices      []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{missing: make(map[string]bool)}
}

func (h *fakeHost) show(active codec.Surface, activePath string, visible ...VisibleSurface) {
	h.active = active
	h.activePath = activePath
	h.visible = visible
}

func (h *fakeHost) VisibleSurfaces() []VisibleSurface    { return h.visible }
func (h *fakeHost) ActiveSurface() codec.Surface        { return h.active }
func (h *fakeHost) ActiveDocument() string              { return h.activePath }
func (h *fakeHost) DocumentExists(path string) bool     { return !h.missing[path] }
func (h *fakeHost) Notice(msg string)                   { h.notices = append(h.notices, msg) }
func (h *fakeHost) CloseActivePane() error              { h.closedActive++; return nil }
func (h *fakeHost) OpenPane(path string, _ bool) error  { h.opened = append(h.opened, path); return nil }
func (h *fakeHost) ClosePanes(path string) (int, error) { h.closed = append(h.closed, path); return 1, nil }

// mockHost records interactions for the command paths.
type mockHost struct {
	mock.Mock
}

func (h *mockHost) VisibleSurfaces() []VisibleSurface {
	args := h.Called()
	if v := args.Get(0); v != nil {
		return v.([]VisibleSurface)
	}
	return nil
}

func (h *mockHost) ActiveSurface() codec.Surface {
	args := h.Called()
	if s := args.Get(0); s != nil {
		return s.(codec.Surface)
	}
	return nil
}

func (h *mockHost) ActiveDocument() string {
	return h.Called().String(0)
}

func (h *mockHost) DocumentExists(path string) bool {
	return h.Called(path).Bool(0)
}

func (h *mockHost) ClosePanes(path string) (int, error) {
	args := h.Called(path)
	return args.Int(0), args.Error(1)
}

func (h *mockHost) CloseActivePane() error {
	return h.Called().Error(0)
}

func (h *mockHost) OpenPane(path string, split bool) error {
	return h.Called(path, split).Error(0)
}

func (h *mockHost) Notice(msg string) {
	h.Called(msg)
}
