// Package jitter добавляет случайность в интервалы повторных попыток,
// чтобы переподключения нескольких экземпляров сервиса не происходили одновременно.
package jitter

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает продолжительность с применённым джиттером.
// Результат находится в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	f := globalRand.Float64()
	randMutex.Unlock()
	return apply(d, jitterFactor, f)
}

// DurationWithSeed возвращает продолжительность с джиттером, используя заданный генератор.
func DurationWithSeed(d time.Duration, jitterFactor float64, rng *rand.Rand) time.Duration {
	return apply(d, jitterFactor, rng.Float64())
}

func apply(d time.Duration, jitterFactor, f float64) time.Duration {
	if d <= 0 || jitterFactor <= 0 {
		return d
	}
	return d + time.Duration(f*jitterFactor*float64(d))
}

// ExponentialBackoff вычисляет экспоненциальное отступление с джиттером.
// attempt нумеруется с нуля, результат без джиттера не превышает max.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	return Duration(exponential(base, max, attempt), jitterFactor)
}

func exponential(base, max time.Duration, attempt int) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > max {
			return max
		}
	}
	if backoff > max {
		return max
	}
	return backoff
}

// Backoff хранит номер попытки между вызовами Next. Не потокобезопасен.
type Backoff struct {
	Base    time.Duration
	Max     time.Duration
	Jitter  float64
	attempt int
}

func NewBackoff(base, max time.Duration) *Backoff {
	return &Backoff{
		Base:   base,
		Max:    max,
		Jitter: DefaultJitter,
	}
}

// Next возвращает паузу перед очередной попыткой и увеличивает счётчик.
func (b *Backoff) Next() time.Duration {
	d := ExponentialBackoff(b.Base, b.Max, b.attempt, b.Jitter)
	b.attempt++
	return d
}

// Reset сбрасывает счётчик после успешной попытки.
func (b *Backoff) Reset() {
	b.attempt = 0
}

func (b *Backoff) Attempt() int {
	return b.attempt
}
