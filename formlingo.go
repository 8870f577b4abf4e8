// Package formlingo is a front end for an AI-backed government form
// translation service.
//
// A form arrives as an uploaded image or PDF, as an entry from the static
// form library, or as pasted text. The Pipeline normalizes the three inputs
// into a single Payload, a Backend translates it into a TranslationResult,
// and the render package turns the result into a replica of the original
// form plus a plain-language explanation.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/ZaguanLabs/formlingo"
//	    "github.com/ZaguanLabs/formlingo/backend"
//	    "github.com/ZaguanLabs/formlingo/library"
//	    "github.com/ZaguanLabs/formlingo/relay"
//	)
//
//	func main() {
//	    b := backend.NewHTTPBackend(backend.Config{BaseURL: "http://localhost:8000"})
//	    pipeline := formlingo.NewPipeline(library.Default(), relay.NewFetcher(relay.Config{}))
//
//	    c := formlingo.NewController(b, pipeline)
//	    c.SetText("Name: ____  Date of birth: ____")
//	    if err := c.SetTargetLanguage("hi"); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    state, err := c.Submit(context.Background())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if state.Result != nil {
//	        fmt.Println(state.Result.Simplification)
//	    }
//	}
package formlingo
