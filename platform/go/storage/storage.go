package storage

import (
	"fmt"
	"path"
	"strings"
)

// ObjectLocation describes where a bundle file should live in an object store.
type ObjectLocation struct {
	Bucket   string
	FullPath string
}

// ResolveRemotePath joins a tenant destination directory and a bundle-relative
// key into an absolute slash-separated remote path.
//   - destination is the tenant directory, e.g. "/public_html/acme".
//   - key is a bundle path such as "css/app.css".
func ResolveRemotePath(destination, key string) (string, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" || destination == "/" {
		return "", fmt.Errorf("destination is required")
	}
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	full := path.Join("/", destination, key)
	if !strings.HasPrefix(full, path.Join("/", destination)+"/") {
		return "", fmt.Errorf("key %q escapes destination", key)
	}
	return full, nil
}

// ResolveObjectLocation maps an absolute remote path onto a bucket object.
// Object names never carry the leading slash.
func ResolveObjectLocation(bucket, remotePath string) (ObjectLocation, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return ObjectLocation{}, fmt.Errorf("bucket is required")
	}
	name := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(remotePath)), "/")
	if name == "" {
		return ObjectLocation{}, fmt.Errorf("remote path is required")
	}
	return ObjectLocation{Bucket: bucket, FullPath: name}, nil
}

// DirPrefix returns the object prefix that represents a remote directory,
// always ending in "/".
func DirPrefix(dir string) string {
	p := strings.TrimPrefix(path.Clean("/"+strings.TrimSpace(dir)), "/")
	if p == "" {
		return ""
	}
	return p + "/"
}
