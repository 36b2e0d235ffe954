package digest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		token string
		want  Algorithm
	}{
		{"sha1", SHA1},
		{"SHA-1", SHA1},
		{"sha-224", SHA2224},
		{"sha-256", SHA2256},
		{"sha2256", SHA2256},
		{"SHA_2_256", SHA2256},
		{"sha-384", SHA2384},
		{"sha-512", SHA2512},
		{"sha3-224", SHA3224},
		{"sha3-256", SHA3256},
		{"sha3_384", SHA3384},
		{"sha3-512", SHA3512},
		{"blake2b", BLAKE2B},
		{"blake2s", BLAKE2S},
		{"BLAKE3", BLAKE3},
		{"xxh3", XXH3},
		{"xxhash64", XXH64},
		{"xxh32", XXH32},
		{"crc32", CRC32},
		{"Md5", MD5},
		{"whirlpool", Whirlpool},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := Parse(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Unknown(t *testing.T) {
	_, err := Parse("sha-1024")
	require.Error(t, err)

	var unknown *UnknownAlgorithmError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "sha-1024", unknown.Token)
	assert.Contains(t, err.Error(), "sha-1024")
}

func TestReader_LengthAndCase(t *testing.T) {
	upperHex := regexp.MustCompile(`^[0-9A-F]+$`)
	inputs := [][]byte{
		nil,
		[]byte("a"),
		[]byte("The quick brown fox jumps over the lazy dog"),
		bytes.Repeat([]byte{0xAB}, 3*bufferSize+17),
	}

	for _, alg := range Algorithms() {
		t.Run(alg.String(), func(t *testing.T) {
			for _, in := range inputs {
				sum, err := Reader(alg, bytes.NewReader(in))
				require.NoError(t, err)
				assert.Len(t, sum, alg.HexLen())
				assert.Regexp(t, upperHex, sum)
			}
		})
	}
}

func TestReader_KnownValues(t *testing.T) {
	tests := []struct {
		alg   Algorithm
		input string
		want  string
	}{
		{SHA2256, "", "E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855"},
		{MD5, "", "D41D8CD98F00B204E9800998ECF8427E"},
		{SHA1, "abc", "A9993E364706816ABA3E25717850C26C9CD0D89D"},
		{CRC32, "123456789", "CBF43926"},
	}

	for _, tt := range tests {
		t.Run(tt.alg.String(), func(t *testing.T) {
			sum, err := Reader(tt.alg, strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, sum)
		})
	}
}

func TestHexLenTable(t *testing.T) {
	allowed := map[int]bool{8: true, 16: true, 32: true, 40: true, 56: true, 64: true, 96: true, 128: true}
	for _, alg := range Algorithms() {
		assert.True(t, allowed[alg.HexLen()], "%s has unexpected hex length %d", alg, alg.HexLen())
	}
	assert.Len(t, Algorithms(), 18)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("test content"), 0644))

	fromFile, err := File(SHA2256, path)
	require.NoError(t, err)

	fromReader, err := Reader(SHA2256, strings.NewReader("test content"))
	require.NoError(t, err)
	assert.Equal(t, fromReader, fromFile)

	_, err = File(SHA2256, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestAlgorithmFlagValue(t *testing.T) {
	alg := Default
	require.NoError(t, alg.Set("sha-512"))
	assert.Equal(t, SHA2512, alg)
	assert.Equal(t, "SHA2-512", alg.String())
	assert.Error(t, alg.Set("nope"))
	assert.Equal(t, SHA2512, alg)
}
