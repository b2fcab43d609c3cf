package services

import "testing"

// Uploaded objects live under a folder prefix, so deletes must target the
// full path after the host, not just the file name.
func TestExtractKeyFromURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "folder prefix kept",
			url:  "https://rentora-media.s3.eu-central-1.amazonaws.com/properties/1716384000000.jpg",
			want: "properties/1716384000000.jpg",
		},
		{
			name: "nested folders kept",
			url:  "https://rentora-media.s3.eu-central-1.amazonaws.com/properties/42/cover.jpg",
			want: "properties/42/cover.jpg",
		},
		{
			name: "no folder",
			url:  "https://rentora-media.s3.eu-central-1.amazonaws.com/cover.jpg",
			want: "cover.jpg",
		},
		{
			name: "bare path",
			url:  "/properties/cover.jpg",
			want: "properties/cover.jpg",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractKeyFromURL(tc.url); got != tc.want {
				t.Fatalf("extractKeyFromURL(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}
