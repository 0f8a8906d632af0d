// Copyright 2025 Serge Kamanzi
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Storage handles persistent storage of forecasts, readings and the session.
// The readings store is load-modify-save, so it is serialized by a mutex;
// the API server appends readings from concurrent handlers.
type Storage struct {
	basePath string
	cache    *Cache
	mutex    sync.Mutex
	logger   *Logger
}

// NewStorage creates a new storage handler with caching
func NewStorage(basePath string, householdID string, logger *Logger) (*Storage, error) {
	// Ensure storage directory exists
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, &StorageError{
			Operation: "create_directory",
			Path:      basePath,
			Err:       err,
		}
	}

	// Initialize cache
	cache, err := NewCache(basePath, householdID, logger)
	if err != nil {
		return nil, &StorageError{
			Operation: "initialize_cache",
			Path:      basePath,
			Err:       err,
		}
	}

	// Clean expired cache entries on startup
	if err := cache.CleanExpired(); err != nil {
		logger.Warn("Failed to clean expired cache", "error", err)
	}

	logger.Debug("Storage initialized", "path", basePath)

	return &Storage{
		basePath: basePath,
		cache:    cache,
		logger:   logger,
	}, nil
}

// SaveForecastResult saves a forecast result for a household
func (s *Storage) SaveForecastResult(result *ForecastResult, householdID string) error {
	filename := fmt.Sprintf("%s_forecast_%s.json", householdID, result.GeneratedAt.Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.basePath, filename)

	s.logger.LogStorageOperation("save_forecast", path)

	return s.saveJSON(path, result)
}

// LoadLatestForecast loads the most recent forecast result for the household
func (s *Storage) LoadLatestForecast(householdID string) (*ForecastResult, error) {
	pattern := filepath.Join(s.basePath, fmt.Sprintf("%s_forecast_*.json", householdID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, &StorageError{
			Operation: "glob_forecast",
			Path:      pattern,
			Err:       err,
		}
	}

	if len(matches) == 0 {
		return nil, nil // No previous forecast found
	}

	// Get the most recent file (files are sorted by date in filename)
	sort.Strings(matches)
	latestFile := matches[len(matches)-1]

	s.logger.LogStorageOperation("load_latest_forecast", latestFile)

	var result ForecastResult
	if err := s.loadJSON(latestFile, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// SaveSession persists the household session (the original dashboard kept
// this in browser-local storage)
func (s *Storage) SaveSession(session *Session) error {
	session.UpdatedAt = time.Now()
	path := filepath.Join(s.basePath, "session.json")

	s.logger.LogStorageOperation("save_session", path)

	return s.saveJSON(path, session)
}

// LoadSession loads the persisted household session, or nil if none exists
func (s *Storage) LoadSession() (*Session, error) {
	path := filepath.Join(s.basePath, "session.json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	s.logger.LogStorageOperation("load_session", path)

	var session Session
	if err := s.loadJSON(path, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// SaveReadings stores the household's recorded monthly readings
func (s *Storage) SaveReadings(householdID string, readings []MonthlyReading) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.saveReadingsLocked(householdID, readings)
}

// LoadReadings loads the household's recorded monthly readings, oldest first
func (s *Storage) LoadReadings(householdID string) ([]MonthlyReading, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.loadReadingsLocked(householdID)
}

// AppendReading records one monthly reading, replacing any existing entry
// for the same month. The load-modify-save sequence runs under the mutex so
// concurrent submissions cannot drop each other's months.
func (s *Storage) AppendReading(householdID string, reading MonthlyReading) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	readings, err := s.loadReadingsLocked(householdID)
	if err != nil {
		return err
	}

	replaced := false
	for i := range readings {
		if readings[i].Month == reading.Month {
			readings[i] = reading
			replaced = true
			break
		}
	}
	if !replaced {
		readings = append(readings, reading)
	}

	return s.saveReadingsLocked(householdID, readings)
}

// saveReadingsLocked writes the readings file (mutex must be held)
func (s *Storage) saveReadingsLocked(householdID string, readings []MonthlyReading) error {
	path := filepath.Join(s.basePath, fmt.Sprintf("%s_readings.json", householdID))

	s.logger.LogStorageOperation("save_readings", path)

	return s.saveJSON(path, readings)
}

// loadReadingsLocked reads the readings file, oldest first (mutex must be held)
func (s *Storage) loadReadingsLocked(householdID string) ([]MonthlyReading, error) {
	path := filepath.Join(s.basePath, fmt.Sprintf("%s_readings.json", householdID))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	s.logger.LogStorageOperation("load_readings", path)

	var readings []MonthlyReading
	if err := s.loadJSON(path, &readings); err != nil {
		return nil, err
	}

	sort.Slice(readings, func(i, j int) bool {
		return readings[i].Month < readings[j].Month
	})

	return readings, nil
}

// saveJSON saves data as JSON to a file. The write goes through a temp file
// in the same directory followed by a rename, so a concurrent reader never
// observes a partially written file.
func (s *Storage) saveJSON(path string, data interface{}) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return &StorageError{
			Operation: "create_file",
			Path:      path,
			Err:       err,
		}
	}

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &StorageError{
			Operation: "encode_json",
			Path:      path,
			Err:       err,
		}
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &StorageError{
			Operation: "close_file",
			Path:      path,
			Err:       err,
		}
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return &StorageError{
			Operation: "rename_file",
			Path:      path,
			Err:       err,
		}
	}

	return nil
}

// loadJSON loads data from a JSON file
func (s *Storage) loadJSON(path string, target interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return &StorageError{
			Operation: "open_file",
			Path:      path,
			Err:       err,
		}
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(target); err != nil {
		return &StorageError{
			Operation: "decode_json",
			Path:      path,
			Err:       err,
		}
	}

	return nil
}

// SaveCache saves data to cache with a TTL (time-to-live)
func (s *Storage) SaveCache(key string, data interface{}, ttl time.Duration) error {
	return s.cache.Set(key, data, ttl)
}

// LoadCache loads data from cache if it exists and hasn't expired
func (s *Storage) LoadCache(key string, target interface{}) (bool, error) {
	return s.cache.Get(key, target)
}

// ClearCache clears all cache entries for the current household
func (s *Storage) ClearCache() error {
	return s.cache.Clear()
}

// Close closes all storage resources
func (s *Storage) Close() error {
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}
