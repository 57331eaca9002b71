package todoapi

import "fmt"

// Extension is a way that a collection of modifiers, or other code, can be applied to an API all at once. This
// makes code more reusable and allows external libraries to provide modifiers
type Extension interface {
	Apply(*API) error
}

// ApplyExtension applies an Extension to the API
func (a *API) ApplyExtension(e Extension) error {
	err := e.Apply(a)
	if err != nil {
		return fmt.Errorf("error applying extension: %w", err)
	}
	return nil
}
