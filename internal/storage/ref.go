package storage

import (
	"fmt"
	"regexp"
	"strings"
)

// Storage reference formats enforced at write time. The bucket prefix of a
// video reference is implied by its premium flag; a premium video's asset
// must live under the premium bucket namespace.
var (
	videoRefPattern     = regexp.MustCompile(`^videos-(free|premium)/[^/]+\.mp4$`)
	thumbnailRefPattern = regexp.MustCompile(`^thumbnails/[^/]+\.(jpg|png|webp)$`)
)

// ValidVideoRef reports whether ref matches videos-(free|premium)/name.mp4.
func ValidVideoRef(ref string) bool {
	return videoRefPattern.MatchString(ref)
}

// ValidThumbnailRef reports whether ref matches thumbnails/name.(jpg|png|webp).
func ValidThumbnailRef(ref string) bool {
	return thumbnailRefPattern.MatchString(ref)
}

// VideoBucket returns the bucket implied by the premium flag.
func VideoBucket(isPremium bool) string {
	if isPremium {
		return BucketVideosPremium
	}
	return BucketVideosFree
}

// SplitVideoRef parses a video storage reference into its bucket and object
// path, verifying that the bucket matches the premium flag. A mismatch or a
// malformed reference is a data-integrity bug, never a user mistake.
func SplitVideoRef(ref string, isPremium bool) (bucket, path string, err error) {
	ref = strings.TrimPrefix(ref, "/")
	if !ValidVideoRef(ref) {
		return "", "", fmt.Errorf("malformed video storage reference %q", ref)
	}
	bucket = VideoBucket(isPremium)
	if !strings.HasPrefix(ref, bucket+"/") {
		return "", "", fmt.Errorf("storage reference %q does not match premium flag %v", ref, isPremium)
	}
	return bucket, strings.TrimPrefix(ref, bucket+"/"), nil
}

// ThumbnailPath strips the bucket prefix from a thumbnail reference so it can
// be passed to the gateway. Accepts both "thumbnails/name.jpg" and a bare
// "name.jpg".
func ThumbnailPath(ref string) string {
	ref = strings.TrimPrefix(ref, "/")
	return strings.TrimPrefix(ref, BucketThumbnails+"/")
}
