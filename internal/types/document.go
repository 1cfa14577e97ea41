package types

// Document is one parsed source. Root is shared through the loader cache
// and must not be modified.
type Document struct {
	Path   string
	Dir    string
	Root   *Node
	Digest string
}

// Source names a document that contributed to a configuration.
type Source struct {
	Path   string
	Digest string
}
