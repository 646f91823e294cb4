// Package secrets keeps credentials out of request descriptions.
//
// A [Value] wraps a builder that reads secrets through a lookup function
// instead of capturing them. The same builder can be run two ways: [Value.Reveal]
// substitutes real environment values and is used only for fingerprinting and
// live execution, [Value.Masked] substitutes opaque tokens and is what gets
// logged or embedded in error messages.
//
//	url := secrets.With(func(get secrets.Get) string {
//	    return "https://api.example.com/items?key=" + get("API_KEY")
//	})
//
//	url.Masked()              // https://api.example.com/items?key=<SECRET:API_KEY>
//	url.Reveal(secrets.OS())  // real key, or a *MissingError
package secrets
