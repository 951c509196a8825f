package dto

import (
	"docshare/internal/models"
	"time"
)

type UploadMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublic    bool   `json:"public"`
	ContentType string `json:"mime"`
}

type DocumentResponse struct {
	ID            string                `json:"id"`
	OwnerID       string                `json:"owner_id"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	FileName      string                `json:"file_name"`
	Extension     string                `json:"extension"`
	Size          int64                 `json:"size"`
	HumanSize     string                `json:"human_size"`
	ContentType   string                `json:"mime"`
	IsPublic      bool                  `json:"public"`
	Status        models.DocumentStatus `json:"status"`
	DownloadCount int64                 `json:"download_count"`
	LastAccessed  *time.Time            `json:"last_accessed,omitempty"`
	CreatedAt     time.Time             `json:"created"`
	ModifiedAt    time.Time             `json:"modified"`
}

func Document(doc *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:            doc.ID,
		OwnerID:       doc.OwnerID,
		Title:         doc.Title,
		Description:   doc.Description,
		FileName:      doc.FileName,
		Extension:     doc.Extension(),
		Size:          doc.Size,
		HumanSize:     doc.HumanSize(),
		ContentType:   doc.ContentType,
		IsPublic:      doc.IsPublic,
		Status:        doc.Status,
		DownloadCount: doc.DownloadCount,
		LastAccessed:  doc.LastAccessed,
		CreatedAt:     doc.CreatedAt,
		ModifiedAt:    doc.ModifiedAt,
	}
}

func Documents(docs []*models.Document) []DocumentResponse {
	res := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		res = append(res, Document(doc))
	}
	return res
}

type SharedDocumentResponse struct {
	Document  DocumentResponse       `json:"document"`
	Level     models.PermissionLevel `json:"permission_level"`
	SharedBy  string                 `json:"shared_by"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
	SharedAt  time.Time              `json:"shared_at"`
}

type MyDocumentsResponse struct {
	Owned  []DocumentResponse       `json:"owned"`
	Shared []SharedDocumentResponse `json:"shared"`
	Stats  models.Stats             `json:"stats"`
}

func MyDocuments(res *models.UserDocuments) MyDocumentsResponse {
	shared := make([]SharedDocumentResponse, 0, len(res.Shared))
	for _, s := range res.Shared {
		shared = append(shared, SharedDocumentResponse{
			Document:  Document(s.Document),
			Level:     s.Share.Level,
			SharedBy:  s.Share.GrantorID,
			ExpiresAt: s.Share.ExpiresAt,
			SharedAt:  s.Share.CreatedAt,
		})
	}

	return MyDocumentsResponse{
		Owned:  Documents(res.Owned),
		Shared: shared,
		Stats:  res.Stats,
	}
}

type DocumentUpdateRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	IsPublic    *bool                  `json:"public"`
	Status      *models.DocumentStatus `json:"status"`
}

func (r DocumentUpdateRequest) Update() models.DocumentUpdate {
	return models.DocumentUpdate{
		Title:       r.Title,
		Description: r.Description,
		IsPublic:    r.IsPublic,
		Status:      r.Status,
	}
}

type TransferRequest struct {
	OwnerID string `json:"owner_id"`
}
