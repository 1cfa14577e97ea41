// Package configure loads layered YAML configuration and turns it into
// live Go values.
//
// Documents compose with tags:
//
//	!include:<path>     replace the node with another document
//	!extends:<path>     deep-merge the document root over a base document
//	!ref:<path>         the value at another dotted path of the tree
//	!factory:<name>     call a registered function with the node's content
//	!obj:<name>         a registered object as is
//
// The scalar tags !timedelta, !re, !bytesize and !directory build
// durations, regular expressions, byte counts and directories.
//
// A Configuration is created unactivated by FromFile, FromString or
// FromValue. Activate resolves every reference and invokes every factory
// once; only then can values be read:
//
//	cfg, err := configure.FromFile("app.yaml")
//	if err != nil {
//		return err
//	}
//	if _, err := cfg.Activate(ctx); err != nil {
//		return err
//	}
//	db, err := cfg.Get("db")
package configure
