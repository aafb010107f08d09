package cmd

import "github.com/ardnew/pdxlint/pkg"

var (
	ErrReadSource  = pkg.NewError("read source")
	ErrDiagnostics = pkg.NewError("errors reported")
	ErrUnknownKind = pkg.NewError("unknown entity kind")
	ErrNotFound    = pkg.NewError("not found")
	ErrFilter      = pkg.NewError("invalid filter expression")
	ErrWatch       = pkg.NewError("watch")
	ErrJSONMarshal = pkg.NewError("marshal JSON")
	ErrYAMLMarshal = pkg.NewError("marshal YAML")
	ErrWriteConfig = pkg.NewError("write configuration file")
	ErrFileExists  = pkg.NewError("file exists (use --force to overwrite)")
)
