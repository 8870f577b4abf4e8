// Package backend defines the translation service client and implementations.
package backend

import "github.com/ZaguanLabs/formlingo"

// Backend is the interface for translation services.
// This is an alias to the main package interface for convenience.
type Backend = formlingo.Backend

// TranslateRequest is an alias to the main package type.
type TranslateRequest = formlingo.TranslateRequest
