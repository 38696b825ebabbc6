// Package v1alpha1 contains API types for the wrale-proof overlay system
package v1alpha1

// APIVersion is the version string stamped on every object
const APIVersion = "v1alpha1"

// TypeMeta describes an individual object's type and API version
type TypeMeta struct {
	// Kind is a string value representing the type of this object
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
	// APIVersion defines the versioned schema of this object
	APIVersion string `json:"apiVersion,omitempty" yaml:"apiVersion,omitempty"`
}

// NewTypeMeta returns type metadata for kind at the current API version
func NewTypeMeta(kind string) TypeMeta {
	return TypeMeta{Kind: kind, APIVersion: APIVersion}
}

// Error is the JSON body of a failed API request
type Error struct {
	// Code provides error classification
	Code string `json:"code"`
	// Message provides error details
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}
