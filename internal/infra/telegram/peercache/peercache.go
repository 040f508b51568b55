// Package peercache — персистентный кэш пиров на bbolt.
// Telegram не позволяет обращаться к пользователю/каналу по одному числовому
// идентификатору: нужен access hash, который сервер выдаёт при первом
// резолве. Кэш сохраняет пары id → access hash между запусками, поэтому
// запросы по -i работают для всего, что утилита уже видела раньше.
package peercache

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"go.etcd.io/bbolt"

	"tg-osint/internal/infra/storage"
)

const (
	peersBucketName             = "peers"
	dbOpenTimeout               = time.Second
	dbFileMode      os.FileMode = 0o600
)

var peersBucketBytes = []byte(peersBucketName)

// Kind описывает тип сущности в кэше.
type Kind string

const (
	KindUser    Kind = "user"
	KindChat    Kind = "chat"
	KindChannel Kind = "channel"
)

// Ref фиксирует минимальную информацию о пире, достаточную для повторного
// обращения к API: идентификатор, access hash и человекочитаемые атрибуты.
type Ref struct {
	Kind       Kind   `json:"kind"`
	ID         int64  `json:"id"`
	AccessHash int64  `json:"access_hash,omitempty"`
	Username   string `json:"username,omitempty"`
	Title      string `json:"title,omitempty"`
	SeenAt     int64  `json:"seen_at"`
}

// Service инкапсулирует bbolt-хранилище кэша пиров.
type Service struct {
	db *bbolt.DB
}

// Open открывает (или создаёт) файл кэша. Таймаут защищает от вечного
// ожидания файловой блокировки, если параллельно запущен второй экземпляр.
func Open(path string) (*Service, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("peercache: db path is empty")
	}
	if err := storage.EnsureDir(p); err != nil {
		return nil, fmt.Errorf("peercache: ensure dir: %w", err)
	}

	db, err := bbolt.Open(p, dbFileMode, &bbolt.Options{Timeout: dbOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("peercache: open db: %w", err)
	}
	return &Service{db: db}, nil
}

// Close закрывает файл базы данных.
func (s *Service) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put сохраняет (или обновляет) записи кэша одной транзакцией.
func (s *Service) Put(refs ...Ref) error {
	if len(refs) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(peersBucketBytes)
		if err != nil {
			return err
		}
		now := time.Now().Unix()
		for _, ref := range refs {
			if ref.ID == 0 {
				continue
			}
			ref.SeenAt = now
			payload, mErr := json.Marshal(ref)
			if mErr != nil {
				return fmt.Errorf("peercache: marshal ref: %w", mErr)
			}
			if pErr := bucket.Put(refKey(ref.Kind, ref.ID), payload); pErr != nil {
				return pErr
			}
		}
		return nil
	})
}

// Get возвращает запись кэша; ok=false, если пир не встречался раньше.
func (s *Service) Get(kind Kind, id int64) (Ref, bool, error) {
	var data []byte
	if err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(peersBucketBytes)
		if bucket == nil {
			return nil
		}
		value := bucket.Get(refKey(kind, id))
		if len(value) == 0 {
			return nil
		}
		data = append(data, value...)
		return nil
	}); err != nil {
		return Ref{}, false, fmt.Errorf("peercache: read: %w", err)
	}
	if len(data) == 0 {
		return Ref{}, false, nil
	}

	var ref Ref
	if err := json.Unmarshal(data, &ref); err != nil {
		// Повреждённая запись не должна блокировать запрос: считаем её отсутствующей.
		return Ref{}, false, nil
	}
	return ref, true, nil
}

// RememberUser кладёт пользователя gotd в кэш. Пользователи без access hash
// (например, из min-конструкций) не сохраняются: такой записью нельзя
// воспользоваться в следующем запуске.
func (s *Service) RememberUser(u *tg.User) error {
	if u == nil {
		return nil
	}
	hash, ok := u.GetAccessHash()
	if !ok {
		return nil
	}
	return s.Put(Ref{
		Kind:       KindUser,
		ID:         u.ID,
		AccessHash: hash,
		Username:   u.Username,
	})
}

// RememberChannel кладёт канал/супергруппу в кэш.
func (s *Service) RememberChannel(ch *tg.Channel) error {
	if ch == nil {
		return nil
	}
	hash, ok := ch.GetAccessHash()
	if !ok {
		return nil
	}
	return s.Put(Ref{
		Kind:       KindChannel,
		ID:         ch.ID,
		AccessHash: hash,
		Username:   ch.Username,
		Title:      ch.Title,
	})
}

// RememberChat кладёт базовую группу в кэш. Access hash для них не нужен,
// запись полезна только определением типа сущности по id.
func (s *Service) RememberChat(c *tg.Chat) error {
	if c == nil {
		return nil
	}
	return s.Put(Ref{
		Kind:  KindChat,
		ID:    c.ID,
		Title: c.Title,
	})
}

func refKey(kind Kind, id int64) []byte {
	return []byte(fmt.Sprintf("%s:%d", kind, id))
}
