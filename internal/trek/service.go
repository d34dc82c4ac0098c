package trek

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"backend-trekbook/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultListLimit = 50
	cacheTTL         = 5 * time.Minute
)

var ErrNotFound = errors.New("trek not found")

type Service struct {
	db    db.Querier
	redis *redis.Client
}

func NewService(db db.Querier, redisClient *redis.Client) *Service {
	return &Service{db: db, redis: redisClient}
}

func (s *Service) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, title, COALESCE(description,''), COALESCE(duration,''), COALESCE(difficulty,''), COALESCE(price,0)
		FROM treks
		ORDER BY id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var treks []Summary
	for rows.Next() {
		var t Summary
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Duration, &t.Difficulty, &t.Price); err != nil {
			return nil, err
		}
		treks = append(treks, t)
	}
	return treks, nil
}

// Get returns the full trek record, consulting the redis cache first.
// Cache problems fall through to the database and are logged only.
func (s *Service) Get(ctx context.Context, id int64) (Trek, error) {
	if cached, ok := s.fromCache(ctx, id); ok {
		return cached, nil
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, title, COALESCE(description,''), COALESCE(duration,''), COALESCE(difficulty,''), COALESCE(price,0),
		       COALESCE(overview,''), COALESCE(highlights,'[]'), COALESCE(who_can_participate,''),
		       COALESCE(itinerary,'[]'), COALESCE(how_to_reach,''), COALESCE(cost_terms,''),
		       COALESCE(trek_essentials,'[]'), created_at
		FROM treks WHERE id=$1
	`, id)

	var t Trek
	var highlights, itinerary, essentials []byte
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Duration, &t.Difficulty, &t.Price,
		&t.Overview, &highlights, &t.WhoCanParticipate,
		&itinerary, &t.HowToReach, &t.CostTerms,
		&essentials, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Trek{}, ErrNotFound
	}
	if err != nil {
		return Trek{}, err
	}

	if err := json.Unmarshal(highlights, &t.Highlights); err != nil {
		return Trek{}, err
	}
	if err := json.Unmarshal(itinerary, &t.Itinerary); err != nil {
		return Trek{}, err
	}
	if err := json.Unmarshal(essentials, &t.TrekEssentials); err != nil {
		return Trek{}, err
	}

	s.toCache(ctx, t)
	return t, nil
}

// Filter returns the subsequence whose title or description contains term,
// case-insensitive. An empty term returns the input unchanged.
func Filter(treks []Summary, term string) []Summary {
	if term == "" {
		return treks
	}
	needle := strings.ToLower(term)
	var matched []Summary
	for _, t := range treks {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			matched = append(matched, t)
		}
	}
	return matched
}

func (s *Service) fromCache(ctx context.Context, id int64) (Trek, bool) {
	if s.redis == nil {
		return Trek{}, false
	}
	payload, err := s.redis.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("trek cache read error: %v", err)
		}
		return Trek{}, false
	}
	var t Trek
	if err := json.Unmarshal(payload, &t); err != nil {
		return Trek{}, false
	}
	return t, true
}

func (s *Service) toCache(ctx context.Context, t Trek) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey(t.ID), payload, cacheTTL).Err(); err != nil {
		log.Printf("trek cache write error: %v", err)
	}
}

func cacheKey(id int64) string {
	return "trek:" + strconv.FormatInt(id, 10)
}
