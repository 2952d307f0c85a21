package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const pairingSheetContentType = "application/json"

// PairingSheetStore publishes round pairing sheets as JSON objects.
type PairingSheetStore struct {
	uploader FileUploader
}

func NewPairingSheetStore(uploader FileUploader) *PairingSheetStore {
	return &PairingSheetStore{uploader: uploader}
}

func PairingSheetKey(tournamentID uuid.UUID, round int) string {
	return fmt.Sprintf("tournaments/%s/rounds/%d/pairings.json", tournamentID, round)
}

// Publish uploads sheet and returns its public URL.
func (s *PairingSheetStore) Publish(ctx context.Context, tournamentID uuid.UUID, round int, sheet interface{}) (string, error) {
	body, err := json.MarshalIndent(sheet, "", "\t")
	if err != nil {
		return "", fmt.Errorf("failed to encode pairing sheet: %w", err)
	}

	result, err := s.uploader.Upload(ctx, PairingSheetKey(tournamentID, round), pairingSheetContentType, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return result.Location, nil
}
