package generator

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

var words = []string{
	"review", "budget", "launch", "timeline", "owner", "scope", "risk", "milestone",
	"customer", "release", "draft", "feedback", "metric", "target", "quarter", "design",
}

var blockStyles = []string{"paragraph", "bullet", "numbered", "quote", "code", "heading2"}

type block struct {
	Style string `json:"style"`
	Text  string `json:"text"`
}

type document struct {
	Title  string  `json:"title"`
	Blocks []block `json:"blocks"`
}

// ComputeChecksum computes a SHA256 checksum for the given data
func ComputeChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}

// GenerateFileData generates size bytes of seeded random data
func GenerateFileData(rng *RNG, size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rng.Intn(256))
	}
	return data
}

// GenerateDocumentContent generates a native block document titled title
func GenerateDocumentContent(title string, rng *RNG) ([]byte, error) {
	doc := document{
		Title:  title,
		Blocks: []block{{Style: "heading1", Text: title}},
	}
	n := rng.Intn(5) + 2
	for i := 0; i < n; i++ {
		doc.Blocks = append(doc.Blocks, block{
			Style: blockStyles[rng.Intn(len(blockStyles))],
			Text:  sentence(rng),
		})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// GenerateJSONContent generates a compact JSON object for a configuration file
func GenerateJSONContent(name string, rng *RNG) ([]byte, error) {
	payload := GenerateFileData(rng, 64)
	obj := struct {
		Name     string   `json:"name"`
		Enabled  bool     `json:"enabled"`
		Replicas int      `json:"replicas"`
		Tags     []string `json:"tags"`
		Checksum string   `json:"checksum"`
	}{
		Name:     name,
		Enabled:  rng.Intn(2) == 1,
		Replicas: rng.Intn(5) + 1,
		Tags:     []string{words[rng.Intn(len(words))], words[rng.Intn(len(words))]},
		Checksum: ComputeChecksum(payload),
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json file: %w", err)
	}
	return data, nil
}

func sentence(rng *RNG) string {
	n := rng.Intn(6) + 3
	s := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			s += " "
		}
		s += words[rng.Intn(len(words))]
	}
	return s
}
