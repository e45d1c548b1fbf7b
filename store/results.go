package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"scirel.ai/deppath/rank"
	"scirel.ai/deppath/types"
)

// SaveArticleResult stores result under runID, replacing an earlier result
// of the same article in that run.
func (db *DB) SaveArticleResult(runID string, result types.ArticleResult) (err error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DELETE FROM article_results WHERE run_id = ? AND title = ?", runID, result.Title); err != nil {
		return err
	}

	res, err := tx.Exec(
		`INSERT INTO article_results (run_id, title, total_pairs, aligned_pairs, path_found,
		cross_sentence_pairs, cross_sentence_path_found, enable_cross_sentence, cross_sentence_strategy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, result.Title,
		result.Stats.TotalPairs, result.Stats.AlignedPairs, result.Stats.PathFound,
		result.Stats.CrossSentencePairs, result.Stats.CrossSentencePathFound,
		result.Config.EnableCrossSentence, result.Config.CrossSentenceStrategy,
	)
	if err != nil {
		return fmt.Errorf("inserting article %s: %w", result.Title, err)
	}
	articleID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO path_records (article_id, position, subject, object, relation, subject_type, object_type,
		path_type, sentence_index, sentence_indexes, path, path_positions, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, record := range result.Pairs {
		path, positions, indexes, encErr := encodeRecord(record)
		if encErr != nil {
			return encErr
		}
		if _, err = stmt.Exec(articleID, i, record.Subject, record.Object, record.Relation,
			record.SubjectType, record.ObjectType, string(record.PathType), record.SentenceIndex,
			indexes, path, positions, record.Note); err != nil {
			return fmt.Errorf("inserting pair %d of %s: %w", i, result.Title, err)
		}
	}
	return tx.Commit()
}

func encodeRecord(record types.PathRecord) (path, positions, indexes sql.NullString, err error) {
	if record.Path != nil {
		if path, err = jsonString(record.Path); err != nil {
			return
		}
	}
	if record.PathPositions != nil {
		if positions, err = jsonString(record.PathPositions); err != nil {
			return
		}
	}
	if record.SentenceIndexes != nil {
		indexes, err = jsonString(record.SentenceIndexes)
	}
	return
}

func jsonString(v interface{}) (sql.NullString, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// LoadArticleResults returns the results of a run ordered by title.
func (db *DB) LoadArticleResults(runID string) ([]types.ArticleResult, error) {
	rows, err := db.conn.Query(
		`SELECT id, title, total_pairs, aligned_pairs, path_found, cross_sentence_pairs,
		cross_sentence_path_found, enable_cross_sentence, cross_sentence_strategy
		FROM article_results WHERE run_id = ? ORDER BY title`, runID)
	if err != nil {
		return nil, err
	}

	var ids []int64
	var results []types.ArticleResult
	for rows.Next() {
		var id int64
		var result types.ArticleResult
		var strategy sql.NullString
		if err := rows.Scan(&id, &result.Title,
			&result.Stats.TotalPairs, &result.Stats.AlignedPairs, &result.Stats.PathFound,
			&result.Stats.CrossSentencePairs, &result.Stats.CrossSentencePathFound,
			&result.Config.EnableCrossSentence, &strategy); err != nil {
			rows.Close()
			return nil, err
		}
		if strategy.Valid {
			s := strategy.String
			result.Config.CrossSentenceStrategy = &s
		}
		ids = append(ids, id)
		results = append(results, result)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		records, err := db.loadRecords(id)
		if err != nil {
			return nil, fmt.Errorf("loading pairs of %s: %w", results[i].Title, err)
		}
		results[i].Pairs = records
	}
	return results, nil
}

func (db *DB) loadRecords(articleID int64) ([]types.PathRecord, error) {
	rows, err := db.conn.Query(
		`SELECT subject, object, relation, subject_type, object_type, path_type, sentence_index,
		sentence_indexes, path, path_positions, note
		FROM path_records WHERE article_id = ? ORDER BY position`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []types.PathRecord{}
	for rows.Next() {
		var record types.PathRecord
		var relation, subjectType, objectType, note sql.NullString
		var indexes, path, positions sql.NullString
		var pathType string
		var sentenceIndex sql.NullInt64
		if err := rows.Scan(&record.Subject, &record.Object, &relation, &subjectType, &objectType,
			&pathType, &sentenceIndex, &indexes, &path, &positions, &note); err != nil {
			return nil, err
		}
		record.Relation = relation.String
		record.SubjectType = subjectType.String
		record.ObjectType = objectType.String
		record.Note = note.String
		record.PathType = types.PathType(pathType)
		if sentenceIndex.Valid {
			idx := int(sentenceIndex.Int64)
			record.SentenceIndex = &idx
		}
		for _, field := range []struct {
			src sql.NullString
			dst interface{}
		}{
			{indexes, &record.SentenceIndexes},
			{path, &record.Path},
			{positions, &record.PathPositions},
		} {
			if !field.src.Valid {
				continue
			}
			if err := json.Unmarshal([]byte(field.src.String), field.dst); err != nil {
				return nil, err
			}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// LoadRankInputs returns the records of a run ready for ranking.
func (db *DB) LoadRankInputs(runID string) ([]rank.Input, error) {
	results, err := db.LoadArticleResults(runID)
	if err != nil {
		return nil, err
	}
	return rank.Inputs(results...), nil
}
