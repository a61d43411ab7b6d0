package kb

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"marrfa-chat/internal/model"
)

// Scored pairs a chunk with its retrieval score.
type Scored struct {
	Chunk model.KnowledgeChunk
	Score float64
}

// Index is an in-memory vector index over knowledge chunks, loaded once at
// startup and read-only afterwards.
//
// Two on-disk layouts are supported for backward compatibility:
//   - kb.index + metadata.json (combined blob with ids and chunks)
//   - kb.index + ids.json + chunks.jsonl
//
// kb.index is a little-endian binary file: uint32 dimension, uint32 row
// count, then row-major float32 vectors.
type Index struct {
	dim     int
	vectors [][]float32
	norms   []float64
	ids     []string
	chunks  map[string]model.KnowledgeChunk
	order   []string // id order, for stable iteration
	enabled bool
}

type metadataBlob struct {
	IDs    []string                        `json:"ids"`
	Chunks map[string]model.KnowledgeChunk `json:"chunks"`
}

// LoadIndex loads the index from dir. Load failure is non-fatal: the built-in
// fallback chunk set substitutes for the process lifetime, and the index
// reports itself as degraded via Enabled.
func LoadIndex(dir string, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}

	idx, err := loadFromDir(dir)
	if err != nil {
		log.Warn("knowledge index load failed, using fallback chunks",
			zap.String("dir", dir), zap.Error(err))
		return fallbackIndex()
	}
	log.Info("knowledge index loaded",
		zap.String("dir", dir), zap.Int("chunks", len(idx.chunks)), zap.Int("dim", idx.dim))
	return idx
}

func loadFromDir(dir string) (*Index, error) {
	indexPath := filepath.Join(dir, "kb.index")
	metaPath := filepath.Join(dir, "metadata.json")
	idsPath := filepath.Join(dir, "ids.json")
	chunksPath := filepath.Join(dir, "chunks.jsonl")

	dim, vectors, err := readVectors(indexPath)
	if err != nil {
		return nil, err
	}

	var ids []string
	chunks := map[string]model.KnowledgeChunk{}

	if _, err := os.Stat(metaPath); err == nil {
		// Legacy layout: single combined metadata blob.
		data, err := os.ReadFile(metaPath)
		if err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}
		var blob metadataBlob
		if err := json.Unmarshal(data, &blob); err != nil {
			return nil, fmt.Errorf("parse metadata: %w", err)
		}
		ids = blob.IDs
		chunks = blob.Chunks
	} else {
		// New layout: parallel ids list plus JSON-lines chunk file.
		data, err := os.ReadFile(idsPath)
		if err != nil {
			return nil, fmt.Errorf("read ids: %w", err)
		}
		if err := json.Unmarshal(data, &ids); err != nil {
			return nil, fmt.Errorf("parse ids: %w", err)
		}
		f, err := os.Open(chunksPath)
		if err != nil {
			return nil, fmt.Errorf("open chunks: %w", err)
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var c model.KnowledgeChunk
			if err := json.Unmarshal(line, &c); err != nil {
				return nil, fmt.Errorf("parse chunk line: %w", err)
			}
			chunks[c.ID] = c
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan chunks: %w", err)
		}
	}

	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("index has %d vectors but %d ids", len(vectors), len(ids))
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks loaded")
	}

	return newIndex(dim, vectors, ids, chunks, true), nil
}

func readVectors(path string) (int, [][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var header struct {
		Dim   uint32
		Count uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return 0, nil, fmt.Errorf("read index header: %w", err)
	}
	if header.Dim == 0 || header.Dim > 1<<14 || header.Count > 1<<20 {
		return 0, nil, fmt.Errorf("implausible index header: dim=%d count=%d", header.Dim, header.Count)
	}

	vectors := make([][]float32, header.Count)
	for i := range vectors {
		row := make([]float32, header.Dim)
		if err := binary.Read(r, binary.LittleEndian, &row); err != nil {
			return 0, nil, fmt.Errorf("read vector %d: %w", i, err)
		}
		vectors[i] = row
	}
	return int(header.Dim), vectors, nil
}

// NewIndex builds an index from already-loaded chunks and vectors, e.g. from
// the pgvector chunk store. vectors may be shorter than chunks only if empty.
func NewIndex(chunks []model.KnowledgeChunk, vectors [][]float32) (*Index, error) {
	if len(vectors) > 0 && len(vectors) != len(chunks) {
		return nil, fmt.Errorf("got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	ids := make([]string, len(chunks))
	byID := make(map[string]model.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
		byID[c.ID] = c
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	return newIndex(dim, vectors, ids, byID, true), nil
}

func newIndex(dim int, vectors [][]float32, ids []string, chunks map[string]model.KnowledgeChunk, enabled bool) *Index {
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		norms[i] = norm(v)
	}
	return &Index{
		dim:     dim,
		vectors: vectors,
		norms:   norms,
		ids:     ids,
		chunks:  chunks,
		order:   ids,
		enabled: enabled,
	}
}

// fallbackIndex guarantees the retriever is never empty.
func fallbackIndex() *Index {
	chunks := []model.KnowledgeChunk{
		{
			ID:      "about",
			Title:   "About Marrfa",
			Content: "Marrfa Real Estate is a Dubai-based real estate company offering residential and commercial property services.",
		},
		{
			ID:      "leadership",
			Title:   "Leadership",
			Content: "Marrfa is led by an experienced executive team responsible for strategic growth and operations in Dubai.",
		},
	}
	ids := make([]string, len(chunks))
	byID := make(map[string]model.KnowledgeChunk, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
		byID[c.ID] = c
	}
	return newIndex(0, nil, ids, byID, false)
}

// Enabled reports whether a real index backs this process, as opposed to the
// fallback chunk set. Exposed for health reporting only; Search and the
// retriever behave identically in both states.
func (idx *Index) Enabled() bool {
	return idx.enabled
}

// Len returns the number of chunks.
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Dim returns the embedding dimension, zero when no vectors are loaded.
func (idx *Index) Dim() int {
	return idx.dim
}

// Search returns the topK nearest chunks by cosine similarity. Without
// vectors it returns the chunks in load order with zero scores, so degraded
// deployments still produce context.
func (idx *Index) Search(query []float32, topK int) []Scored {
	if topK <= 0 {
		topK = len(idx.order)
	}

	if len(idx.vectors) == 0 || len(query) != idx.dim {
		out := make([]Scored, 0, topK)
		for _, id := range idx.order {
			if len(out) >= topK {
				break
			}
			out = append(out, Scored{Chunk: idx.chunks[id]})
		}
		return out
	}

	qn := norm(query)
	scored := make([]Scored, 0, len(idx.vectors))
	for i, v := range idx.vectors {
		c, ok := idx.chunks[idx.ids[i]]
		if !ok {
			continue
		}
		scored = append(scored, Scored{Chunk: c, Score: cosine(query, qn, v, idx.norms[i])})
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// Chunks returns every chunk in load order.
func (idx *Index) Chunks() []model.KnowledgeChunk {
	out := make([]model.KnowledgeChunk, 0, len(idx.order))
	for _, id := range idx.order {
		if c, ok := idx.chunks[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// ByTitle returns every chunk whose title matches exactly, in load order.
func (idx *Index) ByTitle(title string) []model.KnowledgeChunk {
	var out []model.KnowledgeChunk
	for _, id := range idx.order {
		if c, ok := idx.chunks[id]; ok && c.Title == title {
			out = append(out, c)
		}
	}
	return out
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}
