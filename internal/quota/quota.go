// Package quota реализует учёт лимитов рассылок по шоу и фазам.
// Движок только читает и уменьшает счётчики; сброс (ночной для post-show,
// по циклу шоу для pre-show) выполняет внешняя плановая задача.
package quota

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Phase — фаза шоу, к которой относится рассылка.
type Phase string

const (
	// PhasePreShow — рассылки до начала шоу, доступны дилерам и организаторам.
	PhasePreShow Phase = "pre_show"
	// PhasePostShow — рассылки после шоу, только для организаторов.
	PhasePostShow Phase = "post_show"
)

// Valid сообщает, известна ли фаза.
func (p Phase) Valid() bool {
	return p == PhasePreShow || p == PhasePostShow
}

// Decision — результат проверки квоты. Исчерпанная квота — обычный отказ,
// а не ошибка: Allowed=false при nil error.
type Decision struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

// Manager проверяет и расходует квоту рассылок отправителя.
type Manager interface {
	CheckAndConsume(ctx context.Context, senderUID, showID string, phase Phase) (Decision, error)
}

// Limits — допустимое число рассылок на отправителя за шоу по фазам.
type Limits struct {
	PreShow  int
	PostShow int
}

// RedisManager хранит счётчики рассылок в Redis.
type RedisManager struct {
	db     *redis.Client
	limits Limits
}

// NewRedisManager создает менеджер квот поверх клиента Redis.
func NewRedisManager(db *redis.Client, limits Limits) *RedisManager {
	return &RedisManager{db: db, limits: limits}
}

func (m *RedisManager) limitFor(phase Phase) int {
	if phase == PhasePostShow {
		return m.limits.PostShow
	}
	return m.limits.PreShow
}

func counterKey(senderUID, showID string, phase Phase) string {
	return fmt.Sprintf("broadcastquota:%s:%s:%s", phase, showID, senderUID)
}

// CheckAndConsume атомарно расходует одну единицу квоты.
// Счётчик инкрементируется, и если он превысил лимит, инкремент
// откатывается, а вызов возвращает обычный отказ.
func (m *RedisManager) CheckAndConsume(ctx context.Context, senderUID, showID string, phase Phase) (Decision, error) {
	const op = "quota.CheckAndConsume"

	if !phase.Valid() {
		return Decision{}, fmt.Errorf("%s: unknown phase %q", op, phase)
	}

	limit := m.limitFor(phase)
	key := counterKey(senderUID, showID, phase)

	used, err := m.db.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%s: %w", op, err)
	}
	if used > int64(limit) {
		if err := m.db.Decr(ctx, key).Err(); err != nil {
			return Decision{}, fmt.Errorf("%s: %w", op, err)
		}
		return Decision{Allowed: false, Remaining: 0}, nil
	}
	return Decision{Allowed: true, Remaining: limit - int(used)}, nil
}
