package domain

import "time"

// Payload — служебные атрибуты вектора в Qdrant.
type Payload map[string]any

// Embedding — вектор вещи для поиска похожих. ID совпадает с id вещи,
// поэтому пересоздание вектора перезаписывает старый.
type Embedding struct {
	ID      string
	Vector  []float32
	Payload Payload
}

func NewEmbedding(id string, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

// NewPayload собирает атрибуты вектора: ссылку на вещь, путь к картинке
// без фона и версию модели, которой вектор посчитан.
func NewPayload(itemID string, imagePath string, modelVersion string) Payload {
	return Payload{
		"item_id":       itemID,
		"image_path":    imagePath,
		"created_at":    time.Now().UTC().UnixNano(),
		"model_version": modelVersion,
	}
}
