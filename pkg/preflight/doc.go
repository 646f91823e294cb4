// Package preflight runs named checks in parallel before a build starts and
// serves them as health endpoints in the preview server.
//
//	report, err := preflight.Run(ctx, preflight.Checks{
//		"output":   preflight.Writable("dist"),
//		"snapshot": preflight.Exists(artifacts, "snapshot.json"),
//		"redis":    raw.Healthcheck,
//	}, preflight.WithTimeout(3*time.Second))
//
// Run returns an error joining a *CheckError per failed check, so the build can
// refuse to start before any request is made.
//
// # Handlers
//
// LivenessHandler always answers OK. ReadinessHandler runs the checks on every
// request and answers 503 if any fails. Both reply in plain text unless the
// client asks for JSON with Accept: application/json or ?format=json.
package preflight
