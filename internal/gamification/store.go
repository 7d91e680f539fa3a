package gamification

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/abacusquest/abacusquest/internal/kvstore"
	"github.com/abacusquest/abacusquest/internal/logger"
	"github.com/abacusquest/abacusquest/internal/models"
)

// Storage keys, shared with the browser client.
const (
	AchievementKey = "achievement-storage"
	CoinsKey       = "coins-storage"
	StreakKey      = "streak-storage"
	ExperienceKey  = "experience-storage"
)

// XPPerLevel is the experience needed to advance one level.
const XPPerLevel = 1000

var (
	ErrUnknownAchievement = errors.New("gamification: unknown achievement")
	ErrDisposed           = errors.New("gamification: store disposed")
)

// Persisted documents. Only these fields reach the key-value store.
// Unpaid lists unlocks whose rewards have not been credited yet; Paid and
// Rewarded list the achievements already credited to each balance.
type achievementDoc struct {
	Unlocked map[string]time.Time `json:"unlocked"`
	Unpaid   []string             `json:"unpaid,omitempty"`
}

type coinsDoc struct {
	Coins int      `json:"coins"`
	Paid  []string `json:"paid,omitempty"`
}

type streakDoc struct {
	Current       int      `json:"current"`
	Longest       int      `json:"longest"`
	LastActiveDay string   `json:"lastActiveDay,omitempty"`
	Rewarded      []string `json:"rewarded,omitempty"`
}

type experienceDoc struct {
	XP int `json:"xp"`
}

// Store holds one student's rewards. Every write is a compare-and-swap against
// the backing kvstore, so several Stores over the same scope never lose
// updates and never award the same achievement twice.
type Store struct {
	kv    kvstore.Store
	scope string

	mu       sync.Mutex
	disposed bool
	unlocked map[string]time.Time
	coins    int
	streak   streakDoc
	xp       int
}

func NewStore(kv kvstore.Store, scope string) *Store {
	return &Store{kv: kv, scope: scope, unlocked: map[string]time.Time{}}
}

// Init loads the persisted state and credits any rewards left unpaid by an
// earlier unlock.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}
	log := logger.FromContext(ctx).WithPrefix("gamification")

	var a achievementDoc
	if _, err := kvstore.GetJSON(ctx, s.kv, s.scope, AchievementKey, &a); err != nil {
		log.Error("failed to load achievements for %s: %v", s.scope, err)
		return err
	}
	var c coinsDoc
	if _, err := kvstore.GetJSON(ctx, s.kv, s.scope, CoinsKey, &c); err != nil {
		log.Error("failed to load coins for %s: %v", s.scope, err)
		return err
	}
	var st streakDoc
	if _, err := kvstore.GetJSON(ctx, s.kv, s.scope, StreakKey, &st); err != nil {
		log.Error("failed to load streak for %s: %v", s.scope, err)
		return err
	}
	var x experienceDoc
	if _, err := kvstore.GetJSON(ctx, s.kv, s.scope, ExperienceKey, &x); err != nil {
		log.Error("failed to load experience for %s: %v", s.scope, err)
		return err
	}

	s.unlocked = map[string]time.Time{}
	for id, at := range a.Unlocked {
		// Ids dropped from the catalog are ignored.
		if _, ok := Lookup(id); ok {
			s.unlocked[id] = at
		}
	}
	s.coins = c.Coins
	s.streak = st
	s.xp = x.XP
	log.Debug("loaded %s: %d achievements, %d coins", s.scope, len(s.unlocked), s.coins)

	for _, id := range a.Unpaid {
		if err := s.settle(ctx, id); err != nil {
			log.Warn("rewards for %s still pending for %s: %v", id, s.scope, err)
			break
		}
	}
	return nil
}

// Dispose releases the store. Later calls return ErrDisposed.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.unlocked = nil
}

func (s *Store) check() error {
	if s.disposed {
		return ErrDisposed
	}
	return nil
}

// UnlockAchievement moves id from locked to unlocked. It reports true only for
// the caller whose swap committed the unlock. The same swap marks the rewards
// unpaid; they are credited right away, or by the next Init if that fails.
func (s *Store) UnlockAchievement(ctx context.Context, id string, now time.Time) (bool, error) {
	if _, ok := Lookup(id); !ok {
		return false, ErrUnknownAchievement
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return false, err
	}
	log := logger.FromContext(ctx).WithPrefix("gamification")

	doc, won, err := kvstore.Update(ctx, s.kv, s.scope, AchievementKey, func(d *achievementDoc) (bool, error) {
		if _, done := d.Unlocked[id]; done {
			return false, nil
		}
		if d.Unlocked == nil {
			d.Unlocked = map[string]time.Time{}
		}
		d.Unlocked[id] = now.UTC()
		d.Unpaid = append(d.Unpaid, id)
		return true, nil
	})
	if err != nil {
		log.Error("failed to unlock %s for %s: %v", id, s.scope, err)
		return false, err
	}
	for k, at := range doc.Unlocked {
		if _, ok := Lookup(k); ok {
			s.unlocked[k] = at
		}
	}
	if !won {
		log.Debug("achievement %s already unlocked for %s", id, s.scope)
		return false, nil
	}

	log.Info("achievement %s unlocked for %s", id, s.scope)
	if err := s.settle(ctx, id); err != nil {
		return true, err
	}
	return true, nil
}

// settle credits the rewards of an unpaid unlock and then clears it. Each
// balance remembers what it was credited for, so a settle interrupted at any
// step can run again without paying twice.
func (s *Store) settle(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("gamification")
	if def, ok := Lookup(id); ok {
		coins, _, err := kvstore.Update(ctx, s.kv, s.scope, CoinsKey, func(d *coinsDoc) (bool, error) {
			if slices.Contains(d.Paid, id) {
				return false, nil
			}
			d.Coins += def.CoinsReward
			d.Paid = append(d.Paid, id)
			return true, nil
		})
		if err != nil {
			log.Error("failed to credit coins for %s to %s: %v", id, s.scope, err)
			return err
		}
		s.coins = coins.Coins

		if def.StreakReward > 0 {
			streak, _, err := kvstore.Update(ctx, s.kv, s.scope, StreakKey, func(d *streakDoc) (bool, error) {
				if slices.Contains(d.Rewarded, id) {
					return false, nil
				}
				d.Current += def.StreakReward
				d.Longest = max(d.Longest, d.Current)
				d.Rewarded = append(d.Rewarded, id)
				return true, nil
			})
			if err != nil {
				log.Error("failed to credit streak for %s to %s: %v", id, s.scope, err)
				return err
			}
			s.streak = streak
		}
	}

	_, _, err := kvstore.Update(ctx, s.kv, s.scope, AchievementKey, func(d *achievementDoc) (bool, error) {
		i := slices.Index(d.Unpaid, id)
		if i < 0 {
			return false, nil
		}
		d.Unpaid = slices.Delete(d.Unpaid, i, i+1)
		return true, nil
	})
	if err != nil {
		log.Error("failed to clear pending rewards for %s: %v", s.scope, err)
	}
	return err
}

func (s *Store) IsAchievementUnlocked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.unlocked[id]
	return ok
}

// Achievements returns the catalog merged with the unlock timestamps.
func (s *Store) Achievements() []models.Achievement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Achievement, 0, len(Catalog))
	for _, d := range Catalog {
		a := models.Achievement{
			ID:           d.ID,
			Title:        d.Title,
			Description:  d.Description,
			CoinsReward:  d.CoinsReward,
			StreakReward: d.StreakReward,
		}
		if at, ok := s.unlocked[d.ID]; ok {
			at := at
			a.UnlockedAt = &at
		}
		out = append(out, a)
	}
	return out
}

func (s *Store) Coins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coins
}

func (s *Store) AddCoins(ctx context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	return s.addCoins(ctx, n)
}

func (s *Store) addCoins(ctx context.Context, n int) error {
	if n == 0 {
		return nil
	}
	doc, _, err := kvstore.Update(ctx, s.kv, s.scope, CoinsKey, func(d *coinsDoc) (bool, error) {
		d.Coins += n
		if d.Coins < 0 {
			d.Coins = 0
		}
		return true, nil
	})
	if err != nil {
		logger.FromContext(ctx).WithPrefix("gamification").Error("failed to add %d coins for %s: %v", n, s.scope, err)
		return err
	}
	s.coins = doc.Coins
	return nil
}

func (s *Store) Streak() models.Streak {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Streak{
		Current:       s.streak.Current,
		Longest:       s.streak.Longest,
		LastActiveDay: s.streak.LastActiveDay,
	}
}

// RecordActivity counts day towards the consecutive-day streak. A second call
// on the same day changes nothing; a missed day restarts the streak at 1.
func (s *Store) RecordActivity(ctx context.Context, day time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	doc, _, err := kvstore.Update(ctx, s.kv, s.scope, StreakKey, func(d *streakDoc) (bool, error) {
		return advanceStreak(d, day), nil
	})
	if err != nil {
		logger.FromContext(ctx).WithPrefix("gamification").Error("failed to record activity for %s: %v", s.scope, err)
		return err
	}
	s.streak = doc
	return nil
}

// BumpStreak adds n to the current streak without touching the activity day.
func (s *Store) BumpStreak(ctx context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	return s.bumpStreak(ctx, n)
}

func (s *Store) bumpStreak(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	doc, _, err := kvstore.Update(ctx, s.kv, s.scope, StreakKey, func(d *streakDoc) (bool, error) {
		d.Current += n
		d.Longest = max(d.Longest, d.Current)
		return true, nil
	})
	if err != nil {
		logger.FromContext(ctx).WithPrefix("gamification").Error("failed to bump streak for %s: %v", s.scope, err)
		return err
	}
	s.streak = doc
	return nil
}

func (s *Store) AddExperience(ctx context.Context, xp int) error {
	if xp <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	doc, _, err := kvstore.Update(ctx, s.kv, s.scope, ExperienceKey, func(d *experienceDoc) (bool, error) {
		d.XP += xp
		return true, nil
	})
	if err != nil {
		logger.FromContext(ctx).WithPrefix("gamification").Error("failed to add experience for %s: %v", s.scope, err)
		return err
	}
	s.xp = doc.XP
	return nil
}

func (s *Store) Experience() models.Experience {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Experience{XP: s.xp, Level: LevelForXP(s.xp)}
}

// LevelForXP is 1 + xp/XPPerLevel.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return 1 + xp/XPPerLevel
}

// State snapshots everything the rewards panel shows.
func (s *Store) State() models.GamificationState {
	return models.GamificationState{
		Achievements: s.Achievements(),
		Coins:        s.Coins(),
		Streak:       s.Streak(),
		Experience:   s.Experience(),
	}
}

// Reset deletes every persisted reward for the scope.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	log := logger.FromContext(ctx).WithPrefix("gamification")
	for _, key := range []string{AchievementKey, CoinsKey, StreakKey, ExperienceKey} {
		if err := s.kv.Delete(ctx, s.scope, key); err != nil {
			log.Error("failed to delete %s for %s: %v", key, s.scope, err)
			return err
		}
	}
	s.unlocked = map[string]time.Time{}
	s.coins = 0
	s.streak = streakDoc{}
	s.xp = 0
	log.Info("rewards reset for %s", s.scope)
	return nil
}

const dayLayout = "2006-01-02"

func advanceStreak(d *streakDoc, day time.Time) bool {
	today := day.Format(dayLayout)
	if d.LastActiveDay == today {
		return false
	}
	yesterday := day.AddDate(0, 0, -1).Format(dayLayout)
	if d.LastActiveDay == yesterday {
		d.Current++
	} else {
		d.Current = 1
	}
	d.Longest = max(d.Longest, d.Current)
	d.LastActiveDay = today
	return true
}
