package domain

import "errors"

var (
	// ErrDatasetLoad is returned when the round dataset could not be fetched or parsed.
	ErrDatasetLoad = errors.New("dataset load failed")
	// ErrDatasetNotFound indicates the backing store has no dataset with the requested name.
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrPoolNotFound is returned when the course is absent or its resolved pool is empty.
	ErrPoolNotFound = errors.New("no rounds found for this course/difficulty")
	// ErrPrematureStart is returned when a session is started before the dataset has loaded.
	ErrPrematureStart = errors.New("questions are still loading")
	// ErrInvalidDifficulty indicates a difficulty label outside easy|normal|hard.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrNoSession is returned for round actions issued before a session was started.
	ErrNoSession = errors.New("no session in progress")
)
