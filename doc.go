// Package forge is the composition root of the use case editor.
//
// It connects the core (records, edit session, collection) with the storage
// adapters using the hexagonal layout of the repository: pkg/core holds the
// domain and its ports, pkg/adapters the media, pkg/render the Markdown output.
//
// A use case is edited in a working buffer, archived into a collection kept
// as a JSON array under a single storage key, and rendered to Markdown for
// export. Storage is pluggable: files (default), memory, SQLite, Postgres or S3.
//
// Usage:
//
//	svc, err := forge.New(ctx,
//		forge.WithDataDir(".forge"),
//		forge.WithLogger(logger),
//	)
//
//	svc.Session().SetField(core.FieldTitle, "Checkout")
//	stored, err := svc.Archive(ctx)
package forge
