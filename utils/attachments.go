package utils

import (
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
)

// AttachmentError explains why one reference in an attachment list was refused.
type AttachmentError struct {
	Index        int
	DeclaredType string
	Reason       string
}

func (e *AttachmentError) Error() string {
	if e.DeclaredType == "" {
		return fmt.Sprintf("attachment %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("attachment %d (%s): %s", e.Index, e.DeclaredType, e.Reason)
}

// AttachmentPolicy splits attachment references into images and documents
// and refuses references whose declared type is not permitted.
type AttachmentPolicy struct {
	allowed map[string]bool
}

// NewAttachmentPolicy accepts exact media types ("application/pdf") and
// wildcards ("image/*"). An empty list permits every declared type.
func NewAttachmentPolicy(types []string) *AttachmentPolicy {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		if t = strings.TrimSpace(strings.ToLower(t)); t != "" {
			allowed[t] = true
		}
	}
	return &AttachmentPolicy{allowed: allowed}
}

func (p *AttachmentPolicy) Permits(mediaType string) bool {
	if mediaType == "" {
		return false
	}
	if len(p.allowed) == 0 || p.allowed[mediaType] {
		return true
	}
	if i := strings.IndexByte(mediaType, '/'); i > 0 {
		return p.allowed[mediaType[:i]+"/*"]
	}
	return false
}

// Classify partitions refs by declared type. Image references keep their
// relative order in images, every other reference keeps its relative order
// in files. The first refused reference aborts the whole classification.
func (p *AttachmentPolicy) Classify(refs []string) (images, files []string, err error) {
	images = make([]string, 0, len(refs))
	files = make([]string, 0, len(refs))
	for i, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		t := DeclaredType(ref)
		if t == "" {
			return nil, nil, &AttachmentError{Index: i, Reason: "attachment type could not be determined"}
		}
		if !p.Permits(t) {
			return nil, nil, &AttachmentError{Index: i, DeclaredType: t, Reason: "attachment type not allowed"}
		}
		if IsImageType(t) {
			images = append(images, ref)
		} else {
			files = append(files, ref)
		}
	}
	return images, files, nil
}

func IsImageType(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}

// DeclaredType returns the lower-cased media type a reference announces:
// the header of a data: URL, or the type implied by the extension of a
// URL or path. It returns "" when nothing is declared.
func DeclaredType(ref string) string {
	ref = strings.TrimSpace(ref)
	if len(ref) >= 5 && strings.EqualFold(ref[:5], "data:") {
		meta := ref[5:]
		if i := strings.IndexAny(meta, ";,"); i >= 0 {
			meta = meta[:i]
		}
		return strings.ToLower(strings.TrimSpace(meta))
	}

	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil {
		return ""
	}
	return mediaType
}
