// Package slug turns arbitrary text into URL-safe path segments.
//
// Slugs are deterministic: the same input and options always produce the same
// output, so route paths derived from fetched titles are stable across builds.
//
//	slug.Make("Hello, World!")                 // "hello-world"
//	slug.Make("Café & Restaurant")             // "cafe-restaurant"
//	slug.Make("Product Name", slug.Separator("_")) // "product_name"
//	slug.Make("Fish & Chips", slug.CustomReplace(map[string]string{"&": "and"}))
//	// "fish-and-chips"
//
// Latin diacritics are folded to ASCII. Other scripts and symbols become
// separators.
package slug
