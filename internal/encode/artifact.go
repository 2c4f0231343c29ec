package encode

// Artifact is the finished encoded clip: the container bytes plus the
// declared mime type and suggested filename extension.
type Artifact struct {
	Data []byte
	MIME string
	Ext  string
}

// Release drops the artifact's storage. A superseded artifact must be
// released before the next one is installed.
func (a *Artifact) Release() {
	if a != nil {
		a.Data = nil
	}
}
