package classpath

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		exclude []string
		filter  *regexp.Regexp
		want    []string
	}{
		{
			name:    "blank, duplicate and excluded entries removed",
			raw:     []string{"/proj/target/classes", "/proj/lib/a.jar", "", "/proj/lib/a.jar"},
			exclude: []string{"/proj/target/classes"},
			want:    []string{"/proj/lib/a.jar"},
		},
		{
			name: "first-seen order is preserved",
			raw:  []string{"/c.jar", "/a.jar", "/b.jar", "/a.jar", "/c.jar"},
			want: []string{"/c.jar", "/a.jar", "/b.jar"},
		},
		{
			name:    "output and test output excluded with trailing separators",
			raw:     []string{"/proj/target/classes/", "/proj/target/test-classes", "/proj/target/classes", "/dep.jar"},
			exclude: []string{"/proj/target/classes", "/proj/target/test-classes/"},
			want:    []string{"/dep.jar"},
		},
		{
			name: "whitespace-only entries removed",
			raw:  []string{"  ", "\t", "/a.jar", "\n"},
			want: []string{"/a.jar"},
		},
		{
			name:   "filter pattern removes matches",
			raw:    []string{"/repo/a-sources.jar", "/repo/a.jar", "/repo/b-sources.jar", "/repo/c.jar"},
			filter: regexp.MustCompile(`-sources\.jar$`),
			want:   []string{"/repo/a.jar", "/repo/c.jar"},
		},
		{
			name: "empty input",
			raw:  nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.raw, tt.exclude, tt.filter)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	raw := []string{"/z.jar", "/y.jar", "/z.jar", "", "/x/classes", "/w.jar"}
	exclude := []string{"/x/classes"}
	filter := regexp.MustCompile(`w\.jar`)

	first := Resolve(raw, exclude, filter)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(raw, exclude, filter))
	}
	assert.Equal(t, []string{"/z.jar", "/y.jar"}, first)
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	raw := []string{"/a.jar/", "/a.jar"}
	Resolve(raw, nil, nil)
	assert.Equal(t, []string{"/a.jar/", "/a.jar"}, raw)
}
