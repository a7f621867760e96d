// Package signals holds the registry of curated signal accounts whose follow
// activity drives discovery. Each registered handle carries an attribution
// weight; handles outside the registry fall back to the registry default.
// The registry is immutable once loaded, so a run, a test, and a replay can
// each hold their own copy.
package signals

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultWeight is the attribution weight for handles missing from the
// registry.
const DefaultWeight = 70

//go:embed registry.json
var defaultRegistryJSON []byte

// SignalAccount is one curated account and its attribution weight.
type SignalAccount struct {
	Handle string `json:"handle" validate:"required"`
	Weight int    `json:"weight" validate:"required,oneof=60 70 80 90 100"`
}

// registryFile is the on-disk registry document shape.
type registryFile struct {
	DefaultWeight int             `json:"default_weight" validate:"omitempty,min=1"`
	Accounts      []SignalAccount `json:"accounts" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Registry maps signal handles to attribution weights. Lookups are
// case-insensitive; iteration order follows the source document.
type Registry struct {
	defaultWeight int
	weights       map[string]int
	handles       []string
}

// New builds a registry from explicit accounts. Later duplicates of a handle
// (compared case-insensitively) are ignored.
func New(accounts []SignalAccount, defaultWeight int) *Registry {
	r := &Registry{
		defaultWeight: defaultWeight,
		weights:       make(map[string]int, len(accounts)),
	}
	for _, a := range accounts {
		key := strings.ToLower(a.Handle)
		if _, seen := r.weights[key]; seen {
			continue
		}
		r.weights[key] = a.Weight
		r.handles = append(r.handles, a.Handle)
	}
	return r
}

// Default returns the registry embedded in the binary.
func Default() *Registry {
	r, err := parse("embedded registry", defaultRegistryJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded registry is invalid: %v", err))
	}
	return r
}

// Load reads and validates a registry document from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}
	return parse(path, data)
}

func parse(source string, data []byte) (*Registry, error) {
	if err := validateDocument(source, data); err != nil {
		return nil, err
	}

	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", source, err)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid registry %s: %w", source, err)
	}

	if file.DefaultWeight == 0 {
		file.DefaultWeight = DefaultWeight
	}
	return New(file.Accounts, file.DefaultWeight), nil
}

// Handles returns the registered handles in document order.
func (r *Registry) Handles() []string {
	out := make([]string, len(r.handles))
	copy(out, r.handles)
	return out
}

// Weight returns the attribution weight for a handle, or the registry
// default when the handle is not registered.
func (r *Registry) Weight(handle string) int {
	if w, ok := r.weights[strings.ToLower(handle)]; ok {
		return w
	}
	return r.defaultWeight
}

// Contains reports whether a handle is registered.
func (r *Registry) Contains(handle string) bool {
	_, ok := r.weights[strings.ToLower(handle)]
	return ok
}

// Len returns the number of registered accounts.
func (r *Registry) Len() int {
	return len(r.handles)
}

// FallbackWeight returns the weight applied to unregistered handles.
func (r *Registry) FallbackWeight() int {
	return r.defaultWeight
}
