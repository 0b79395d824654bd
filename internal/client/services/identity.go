package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
	"github.com/dmitrijs2005/jotkeeper/internal/client/repositories/settings"
	"github.com/dmitrijs2005/jotkeeper/internal/common"
	"github.com/dmitrijs2005/jotkeeper/internal/logging"
)

const settingIdentity = "device_identity"

// IdentityService owns the anonymous device identity: a random device id
// and this device's own secret key, created once per installation.
type IdentityService struct {
	settings settings.Repository
	log      logging.Logger
}

func NewIdentityService(settings settings.Repository, log logging.Logger) *IdentityService {
	return &IdentityService{settings: settings, log: log}
}

// EnsureIdentity returns the persisted identity, generating and storing a
// fresh one on first run. Idempotent: an existing identity is never
// regenerated. When the settings store is unusable the engine cannot
// operate at all, so failures wrap common.ErrIdentityUnavailable.
func (s *IdentityService) EnsureIdentity(ctx context.Context) (*models.DeviceIdentity, error) {
	raw, err := s.settings.Get(ctx, settingIdentity)
	if err == nil {
		var id models.DeviceIdentity
		if uerr := json.Unmarshal(raw, &id); uerr != nil {
			return nil, fmt.Errorf("%w: corrupted identity record: %v", common.ErrIdentityUnavailable, uerr)
		}
		return &id, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: %v", common.ErrIdentityUnavailable, err)
	}

	key, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIdentityUnavailable, err)
	}
	id := models.DeviceIdentity{DeviceID: uuid.NewString(), LocalKey: key}

	b, err := json.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIdentityUnavailable, err)
	}
	if err := s.settings.Set(ctx, settingIdentity, b); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIdentityUnavailable, err)
	}

	s.log.Info(ctx, "generated new device identity", "device", id.DeviceID)
	return &id, nil
}
