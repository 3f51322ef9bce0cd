package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/mobile_money_core/internal/apperrors"
	"github.com/SscSPs/mobile_money_core/internal/core/domain"
	portsrepo "github.com/SscSPs/mobile_money_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/mobile_money_core/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
)

// errLostIdempotencyRace rolls back a body whose result lost the insert race to a concurrent duplicate.
var errLostIdempotencyRace = errors.New("idempotency record already written by a concurrent command")

// idempotentCommand is implemented by every mutating command through dto.CommandMeta.
type idempotentCommand interface {
	Key() string
	Hash() string
}

// Dispatcher runs mutating commands exactly once per idempotency key.
type Dispatcher struct {
	BaseService
	txManager portsrepo.TransactionManager
	idemRepo  portsrepo.IdempotencyRepositoryFacade
	audit     portssvc.AuditPort
	validate  *validator.Validate
	ttl       time.Duration
}

func NewDispatcher(
	txManager portsrepo.TransactionManager,
	idemRepo portsrepo.IdempotencyRepositoryFacade,
	audit portssvc.AuditPort,
	validate *validator.Validate,
	ttl time.Duration,
) *Dispatcher {
	return &Dispatcher{
		txManager: txManager,
		idemRepo:  idemRepo,
		audit:     audit,
		validate:  validate,
		ttl:       ttl,
	}
}

// command describes one execution of a mutating command.
type command[T any] struct {
	actor      domain.Actor
	action     string
	resultType string
	payload    idempotentCommand
	// precheck runs after the idempotency lookup and outside the main unit of work,
	// so whatever it commits survives a failing body.
	precheck func(ctx context.Context) error
	// execute returns the result and the audit metadata. Nil metadata means no state changed.
	execute func(ctx context.Context) (*T, map[string]string, error)
}

// dispatch validates, short-circuits on a cached result, and otherwise runs the body,
// the audit event and the idempotency record in one unit of work.
func dispatch[T any](ctx context.Context, d *Dispatcher, cmd command[T]) (*T, error) {
	key := strings.TrimSpace(cmd.payload.Key())
	if key == "" {
		return nil, apperrors.Validationf("idempotencyKey is required")
	}

	hash := cmd.payload.Hash()
	if hash == "" {
		var err error
		if hash, err = requestHash(cmd.actor, cmd.payload); err != nil {
			return nil, apperrors.Technical("failed to hash request", err)
		}
	}

	logger := d.GetLogger(ctx).With(slog.String("action", cmd.action), slog.String("idempotency_key", key))

	cached, found, err := lookupCached[T](ctx, d, key, hash, cmd.resultType)
	if err != nil {
		return nil, err
	}
	if found {
		logger.Info("Returning cached result for replayed command")
		return cached, nil
	}

	if d.validate != nil {
		if err := d.validate.Struct(cmd.payload); err != nil {
			return nil, apperrors.NewAppError(apperrors.KindValidation, "invalid command: "+err.Error(), err)
		}
	}

	if cmd.precheck != nil {
		if err := cmd.precheck(ctx); err != nil {
			return nil, err
		}
	}

	var result *T
	replayed := false
	err = d.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		// Duplicates queue here until the first holder commits or rolls back,
		// then find its record instead of running the body again.
		if err := d.idemRepo.LockKey(txCtx, key); err != nil {
			return err
		}
		cached, found, err := lookupCached[T](txCtx, d, key, hash, cmd.resultType)
		if err != nil {
			return err
		}
		if found {
			result, replayed = cached, true
			return nil
		}

		res, metadata, err := cmd.execute(txCtx)
		if err != nil {
			return err
		}

		now := d.Now()
		if metadata != nil {
			metadata["idempotencyKey"] = key
			event := domain.AuditEvent{
				EventID:    newID(),
				ActorType:  cmd.actor.Type,
				ActorID:    cmd.actor.ID,
				Action:     cmd.action,
				OccurredAt: now,
				Metadata:   metadata,
			}
			if err := d.audit.Publish(txCtx, event); err != nil {
				return apperrors.Technical("failed to publish audit event", err)
			}
		}

		raw, err := json.Marshal(res)
		if err != nil {
			return apperrors.Technical("failed to encode command result", err)
		}
		record := domain.IdempotencyRecord{
			IdempotencyKey: key,
			RequestHash:    hash,
			ResultType:     cmd.resultType,
			ResultJSON:     raw,
			CreatedAt:      now,
		}
		if d.ttl > 0 {
			expires := now.Add(d.ttl)
			record.ExpiresAt = &expires
		}
		inserted, err := d.idemRepo.InsertIfAbsent(txCtx, record)
		if err != nil {
			return err
		}
		if !inserted {
			return errLostIdempotencyRace
		}
		result = res
		return nil
	})

	if errors.Is(err, errLostIdempotencyRace) {
		logger.Info("Concurrent duplicate committed first, returning its result")
		cached, found, lookupErr := lookupCached[T](ctx, d, key, hash, cmd.resultType)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if !found {
			return nil, apperrors.Technical("idempotency record vanished after insert race", nil)
		}
		return cached, nil
	}
	if err != nil {
		d.LogOutcome(ctx, err, "Command failed", slog.String("action", cmd.action), slog.String("idempotency_key", key))
		return nil, err
	}

	if replayed {
		logger.Info("Concurrent duplicate committed first, returning its result")
		return result, nil
	}
	logger.Info("Command executed")
	return result, nil
}

func lookupCached[T any](ctx context.Context, d *Dispatcher, key, hash, resultType string) (*T, bool, error) {
	record, err := d.idemRepo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if record.ResultType != resultType {
		return nil, false, apperrors.IdempotencyConflictf("idempotency key %s was used for a different command", key)
	}
	if record.RequestHash != "" && hash != "" && record.RequestHash != hash {
		return nil, false, apperrors.IdempotencyConflictf("idempotency key %s was used with a different request", key)
	}
	var out T
	if err := json.Unmarshal(record.ResultJSON, &out); err != nil {
		return nil, false, apperrors.Technical("failed to decode cached result", err)
	}
	return &out, true, nil
}

// hashRedactor is implemented by commands carrying secrets that must not feed the request hash.
type hashRedactor interface {
	HashPayload() any
}

// requestHash is the SHA-256 of the actor and the command's JSON form.
func requestHash(actor domain.Actor, payload any) (string, error) {
	if r, ok := payload.(hashRedactor); ok {
		payload = r.HashPayload()
	}
	raw, err := json.Marshal(struct {
		ActorType domain.ActorType `json:"actorType"`
		ActorID   string           `json:"actorId"`
		Command   any              `json:"command"`
	}{actor.Type, actor.ID, payload})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
