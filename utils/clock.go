package utils

import "time"

// Clock memisahkan pembacaan waktu dari logika domain supaya perhitungan
// refund window bisa diuji secara deterministik.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewRealClock returns the wall clock.
func NewRealClock() Clock { return realClock{} }

// FixedClock selalu mengembalikan waktu yang sama; dipakai di test.
type FixedClock struct {
	T time.Time
}

func (f FixedClock) Now() time.Time { return f.T }
