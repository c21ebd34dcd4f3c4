// ABOUTME: Request log storage operations.
// ABOUTME: Handles inserting and querying the backend API's HTTP request logs.

package store

import "time"

// RequestLog represents an HTTP request log entry
type RequestLog struct {
	ID           int64
	Timestamp    time.Time
	Resource     string
	Method       string
	Path         string
	StatusCode   int
	DurationMs   int
	UserID       string
	IPAddress    string
	UserAgent    string
	Error        string
	RequestBody  string
	ResponseBody string
}

// LogRequest inserts a request log entry
func (s *Store) LogRequest(log *RequestLog) error {
	_, err := s.db.Exec(`
		INSERT INTO request_logs (resource, method, path, status_code, duration_ms, user_id, ip_address, user_agent, error, request_body, response_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, log.Resource, log.Method, log.Path, log.StatusCode, log.DurationMs, log.UserID, log.IPAddress, log.UserAgent, log.Error, log.RequestBody, log.ResponseBody)
	return err
}

// RequestLogQuery represents filters for request logs
type RequestLogQuery struct {
	Limit      int
	Offset     int
	Resource   string
	Method     string
	PathPrefix string
	StatusCode int
	UserID     string
}

// RequestLogStats represents aggregate statistics
type RequestLogStats struct {
	TotalRequests   int
	TodayRequests   int
	ErrorRequests   int
	AvgDurationMs   int
	UniqueEndpoints int
	UniqueUsers     int
}

// EndpointCount is one row of GetTopEndpoints.
type EndpointCount struct {
	Path  string
	Count int
	AvgMs int
}

const requestLogColumns = `id, timestamp, COALESCE(resource, ''), method, path, status_code, duration_ms,
	COALESCE(user_id, ''), COALESCE(ip_address, ''), COALESCE(user_agent, ''), COALESCE(error, ''),
	COALESCE(request_body, ''), COALESCE(response_body, '')`

func (s *Store) queryRequestLogs(query string, args ...any) ([]*RequestLog, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*RequestLog
	for rows.Next() {
		log := &RequestLog{}
		if err := rows.Scan(&log.ID, &log.Timestamp, &log.Resource, &log.Method, &log.Path, &log.StatusCode,
			&log.DurationMs, &log.UserID, &log.IPAddress, &log.UserAgent, &log.Error,
			&log.RequestBody, &log.ResponseBody); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// GetRequestLogs retrieves request logs with filtering
func (s *Store) GetRequestLogs(q *RequestLogQuery) ([]*RequestLog, error) {
	query := `SELECT ` + requestLogColumns + ` FROM request_logs WHERE 1=1`
	args := []any{}

	if q.Resource != "" {
		query += " AND resource = ?"
		args = append(args, q.Resource)
	}
	if q.Method != "" {
		query += " AND method = ?"
		args = append(args, q.Method)
	}
	if q.PathPrefix != "" {
		query += ` AND path LIKE ? ESCAPE '\'`
		args = append(args, escapeSQLLike(q.PathPrefix)+"%")
	}
	if q.StatusCode > 0 {
		query += " AND status_code = ?"
		args = append(args, q.StatusCode)
	}
	if q.UserID != "" {
		query += " AND user_id = ?"
		args = append(args, q.UserID)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, q.Offset)

	return s.queryRequestLogs(query, args...)
}

// GetRequestLogStats returns aggregate statistics
func (s *Store) GetRequestLogStats() (*RequestLogStats, error) {
	stats := &RequestLogStats{}
	today := time.Now().Format("2006-01-02")

	queries := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.TotalRequests, "SELECT COUNT(*) FROM request_logs", nil},
		{&stats.TodayRequests, "SELECT COUNT(*) FROM request_logs WHERE date(timestamp) = ?", []any{today}},
		{&stats.ErrorRequests, "SELECT COUNT(*) FROM request_logs WHERE status_code >= 400", nil},
		{&stats.AvgDurationMs, "SELECT CAST(COALESCE(AVG(duration_ms), 0) AS INTEGER) FROM request_logs", nil},
		{&stats.UniqueEndpoints, "SELECT COUNT(DISTINCT path) FROM request_logs", nil},
		{&stats.UniqueUsers, "SELECT COUNT(DISTINCT user_id) FROM request_logs WHERE user_id != ''", nil},
	}
	for _, q := range queries {
		if err := s.db.QueryRow(q.query, q.args...).Scan(q.dest); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

// GetTopEndpoints returns the most frequently requested endpoints
func (s *Store) GetTopEndpoints(limit int) ([]EndpointCount, error) {
	rows, err := s.db.Query(`
		SELECT path, COUNT(*) as count, AVG(duration_ms) as avg_ms
		FROM request_logs
		GROUP BY path
		ORDER BY count DESC, path
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []EndpointCount
	for rows.Next() {
		var e EndpointCount
		var avgMs float64
		if err := rows.Scan(&e.Path, &e.Count, &avgMs); err != nil {
			return nil, err
		}
		e.AvgMs = int(avgMs)
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

// GetResourceRequestCount returns the number of requests for a resource since a given time
func (s *Store) GetResourceRequestCount(resource string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*)
		FROM request_logs
		WHERE resource = ? AND timestamp >= ?
	`, resource, since).Scan(&count)
	return count, err
}

// GetResourceErrorRate returns the error rate percentage for a resource since a given time
func (s *Store) GetResourceErrorRate(resource string, since time.Time) (float64, error) {
	var totalCount, errorCount int

	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status_code >= 400 THEN 1 ELSE 0 END), 0)
		FROM request_logs
		WHERE resource = ? AND timestamp >= ?
	`, resource, since).Scan(&totalCount, &errorCount)
	if err != nil {
		return 0, err
	}

	if totalCount == 0 {
		return 0, nil
	}
	return (float64(errorCount) / float64(totalCount)) * 100.0, nil
}

// GetRecentRequests returns the most recent requests for a resource
func (s *Store) GetRecentRequests(resource string, limit int) ([]*RequestLog, error) {
	return s.queryRequestLogs(`SELECT `+requestLogColumns+`
		FROM request_logs
		WHERE resource = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, resource, limit)
}
