package requests

import (
	"github.com/dmitrymomot/kiln"
	"github.com/dmitrymomot/kiln/pkg/decode"
	"github.com/dmitrymomot/kiln/pkg/request"
	"github.com/dmitrymomot/kiln/pkg/secrets"
)

const repoURL = "https://api.github.com/repos/dmitrymomot/kiln"

// Repo is the repository shown on the home page.
type Repo struct {
	Name         string
	Description  string
	Stars        int
	Contributors []string
}

func github(url string) kiln.Secret[request.Details] {
	return kiln.WithSecrets(func(get secrets.Get) request.Details {
		return request.Details{
			URL: url,
			Headers: []request.Header{
				{Name: "Accept", Value: "application/vnd.github+json"},
				{Name: "Authorization", Value: "Bearer " + get("GITHUB_TOKEN")},
			},
		}
	})
}

var repoDecoder = decode.Map3(
	decode.Field("name", decode.String()),
	decode.OneOf(decode.Field("description", decode.String()), decode.Succeed("")),
	decode.Field("stargazers_count", decode.Int()),
	func(name, description string, stars int) Repo {
		return Repo{Name: name, Description: description, Stars: stars}
	},
)

// GetRepo fetches the repository, then its contributors from the URL the
// repository response links to.
func GetRepo() kiln.Request[Repo] {
	repo := request.Send(github(repoURL), repoDecoder)
	contributorsURL := request.Send(github(repoURL), decode.Field("contributors_url", decode.String()))

	contributors := request.AndThen(contributorsURL, func(url string) kiln.Request[[]string] {
		return request.Send(github(url), decode.List(decode.Field("login", decode.String())))
	})
	return request.Map2(repo, contributors, func(r Repo, logins []string) Repo {
		r.Contributors = logins
		return r
	})
}
