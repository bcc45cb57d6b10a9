package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfile_Join(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile Profile
		elem    []string
		want    string
	}{
		{"windows", Windows(), []string{`C:\Program Files\Microsoft SDKs\Windows\v7.1`, "Bin"}, `C:\Program Files\Microsoft SDKs\Windows\v7.1\Bin`},
		{"windows trailing separator", Windows(), []string{`C:\sdk\`, `Bin\SetEnv.cmd`}, `C:\sdk\Bin\SetEnv.cmd`},
		{"windows forward slashes", Windows(), []string{"C:/qt", "bin"}, `C:\qt\bin`},
		{"posix", POSIX(), []string{"/opt/qt/", "/bin", "qt.conf"}, "/opt/qt/bin/qt.conf"},
		{"posix root", POSIX(), []string{"/", "src"}, "/src"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.profile.Join(tt.elem...))
		})
	}
}

func TestProfile_SplitList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{`C:\Windows`, `C:\7-Zip`}, Windows().SplitList(`C:\Windows;;C:\7-Zip;`))
	assert.Equal(t, []string{"/usr/bin", "/bin"}, POSIX().SplitList("/usr/bin::/bin"))
	assert.Empty(t, POSIX().SplitList(""))
}

func TestProfile_JoinList(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `C:\sdk\Bin;C:\Windows`, Windows().JoinList(`C:\sdk\Bin`, `C:\Windows`))
	assert.Equal(t, "/a:/b", POSIX().JoinList("/a", "/b"))
}

func TestIsWindowsPath(t *testing.T) {
	t.Parallel()

	assert.True(t, IsWindowsPath(`C:\Users\name`))
	assert.True(t, IsWindowsPath("d:/src"))
	assert.False(t, IsWindowsPath("/home/user"))
	assert.False(t, IsWindowsPath("relative"))
}
