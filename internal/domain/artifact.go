package domain

// ArtifactKind различает исходный и обработанный буферы сессии
type ArtifactKind string

const (
	ArtifactOriginal  ArtifactKind = "original"
	ArtifactProcessed ArtifactKind = "processed"
)

// Artifact — байтовый буфер, созданный в ходе ингеста, с preview-хэндлом.
// Generation привязывает буфер к конкретному выбору файла: processed-артефакт
// живёт только при совпадении поколения с актуальным original.
type Artifact struct {
	Kind       ArtifactKind
	Generation uint64
	Data       []byte
	MimeType   string
	Handle     string
}

func NewArtifact(kind ArtifactKind, generation uint64, data []byte, mimeType string, handle string) *Artifact {
	return &Artifact{
		Kind:       kind,
		Generation: generation,
		Data:       data,
		MimeType:   mimeType,
		Handle:     handle,
	}
}
