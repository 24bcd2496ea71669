package repository

import "database/sql"

// MySQLRunRepository implements RunRepository for MySQL without GORM.
type MySQLRunRepository struct {
	sqlRunRepository
}

// NewMySQLRunRepository creates a new MySQLRunRepository.
func NewMySQLRunRepository(db *sql.DB) *MySQLRunRepository {
	return &MySQLRunRepository{sqlRunRepository{db: db, q: runQueries{
		schema: `
		CREATE TABLE IF NOT EXISTS simulation_runs (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(64) NOT NULL,
			scenario_name VARCHAR(256),
			heap_size BIGINT,
			operations INT,
			agree TINYINT(1),
			results JSON,
			created_at DATETIME(6) NOT NULL,
			UNIQUE KEY uk_run_id (run_id),
			KEY idx_created_at (created_at)
		)`,
		upsert: `
		INSERT INTO simulation_runs (run_id, scenario_name, heap_size, operations, agree, results, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			scenario_name = VALUES(scenario_name),
			heap_size = VALUES(heap_size),
			operations = VALUES(operations),
			agree = VALUES(agree),
			results = VALUES(results),
			created_at = VALUES(created_at)`,
		get: `
		SELECT id, run_id, COALESCE(scenario_name, ''), heap_size, operations, agree, results, created_at
		FROM simulation_runs
		WHERE run_id = ?`,
		list: `
		SELECT id, run_id, COALESCE(scenario_name, ''), heap_size, operations, agree, results, created_at
		FROM simulation_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		delete: `DELETE FROM simulation_runs WHERE run_id = ?`,
	}}}
}
