package formlingo_test

import (
	"context"
	"testing"

	"github.com/ZaguanLabs/formlingo"
	"github.com/ZaguanLabs/formlingo/backend"
	"github.com/ZaguanLabs/formlingo/library"
	"github.com/ZaguanLabs/formlingo/render"
)

// Benchmarks for performance validation

func BenchmarkExtractDocumentID(b *testing.B) {
	link := "https://drive.google.com/file/d/1ELN7FRF_BsaWcqn7sTCIVMh03Uix58aR/preview"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = formlingo.ExtractDocumentID(link)
	}
}

func BenchmarkCatalog_Filter(b *testing.B) {
	catalog := library.Default()
	q := library.Query{Search: "card", Category: library.AllFilter, State: library.AllFilter}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		catalog.Filter(q)
	}
}

func BenchmarkClassifyLabel(b *testing.B) {
	labels := []string{"1. Name:", "[ ] Male", "Affix photo here", "Signature of applicant", "Date:"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		render.ClassifyLabel(labels[i%len(labels)])
	}
}

func BenchmarkSanitizeFragment(b *testing.B) {
	s := `<b>Name</b> <script>alert(1)</script><i>as in Aadhaar</i>`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		render.SanitizeFragment(s)
	}
}

func BenchmarkRenderResult(b *testing.B) {
	result := backend.SampleResult("hi")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := render.HTML(render.RenderResult(result)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDocument(b *testing.B) {
	result := backend.SampleResult("ur")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := render.Document(result, "ur"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkController_SubmitText(b *testing.B) {
	c := formlingo.NewController(backend.NewMockBackend(), formlingo.NewPipeline(library.Default(), nil))
	defer c.Close()
	c.SetText("1. Name of applicant:\n2. Address:")

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Submit(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGetDirection(b *testing.B) {
	langs := []string{"hi", "ta", "ur", "bn", "en"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		formlingo.GetDirection(langs[i%len(langs)])
	}
}

func BenchmarkSearchLanguages(b *testing.B) {
	terms := []string{"", "ta", "Urdu", "ben"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		formlingo.SearchLanguages(terms[i%len(terms)])
	}
}
