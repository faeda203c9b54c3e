package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/lib/pq"
)

const (
	accountColumns = "id, full_name, email, password_hash, profile_pic, plan, subscription_plan, " +
		"is_profile_public, friends, friend_requests, created_at, updated_at"

	messageColumns = "id, external_id, sender_id, receiver_id, text, image, created_at"

	uniqueViolation = "23505"

	defaultMessageLimit = 50
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		u              User
		friends        pq.Int64Array
		friendRequests pq.Int64Array
	)

	err := row.Scan(
		&u.Id,
		&u.FullName,
		&u.EmailAddress,
		&u.PasswordHash,
		&u.ProfilePic,
		&u.Plan,
		&u.SubscriptionPlan,
		&u.IsProfilePublic,
		&friends,
		&friendRequests,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}

	u.Friends = fromInt64Array(friends)
	u.FriendRequests = fromInt64Array(friendRequests)
	return u, nil
}

func scanSummaries(rows *sql.Rows) ([]UserSummary, error) {
	defer rows.Close()

	summaries := make([]UserSummary, 0)
	for rows.Next() {
		var s UserSummary
		if err := rows.Scan(&s.Id, &s.FullName, &s.ProfilePic); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return summaries, nil
}

func fromInt64Array(a pq.Int64Array) []int {
	ids := make([]int, 0, len(a))
	for _, id := range a {
		ids = append(ids, int(id))
	}
	return ids
}

func toInt64Array(ids []int) pq.Int64Array {
	a := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		a = append(a, int64(id))
	}
	return a
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (db *PgGoChatRepository) CreateAccount(ctx context.Context, params CreateAccountParams) (User, error) {
	now := time.Now().UTC()
	row := db.conn.QueryRowContext(
		ctx,
		"INSERT INTO accounts (full_name, email, password_hash, plan, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING "+accountColumns,
		params.FullName,
		params.EmailAddress,
		params.PasswordHash,
		params.Plan,
		now,
		now,
	)

	u, err := scanUser(row)
	if isUniqueViolation(err) {
		return User{}, ErrDuplicateEmail
	}

	return u, err
}

func (db *PgGoChatRepository) GetAccountById(ctx context.Context, id int) (User, error) {
	row := db.conn.QueryRowContext(
		ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1 LIMIT 1",
		id,
	)

	return scanUser(row)
}

func (db *PgGoChatRepository) GetAccountByEmail(ctx context.Context, email string) (User, error) {
	row := db.conn.QueryRowContext(
		ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE email = $1 LIMIT 1",
		email,
	)

	return scanUser(row)
}

func (db *PgGoChatRepository) UpdateProfilePic(ctx context.Context, id int, profilePic string) (User, error) {
	row := db.conn.QueryRowContext(
		ctx,
		"UPDATE accounts SET profile_pic = $2, updated_at = $3 WHERE id = $1 RETURNING "+accountColumns,
		id,
		profilePic,
		time.Now().UTC(),
	)

	return scanUser(row)
}

func (db *PgGoChatRepository) UpdateSubscriptionPlan(ctx context.Context, id int, plan string, profilePublic bool) error {
	res, err := db.conn.ExecContext(
		ctx,
		"UPDATE accounts SET subscription_plan = $2, is_profile_public = $3, updated_at = $4 WHERE id = $1",
		id,
		plan,
		profilePublic,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgGoChatRepository) ListAccounts(ctx context.Context, excludeId int) ([]UserSummary, error) {
	rows, err := db.conn.QueryContext(
		ctx,
		"SELECT id, full_name, profile_pic FROM accounts WHERE id <> $1 ORDER BY full_name, id",
		excludeId,
	)
	if err != nil {
		return nil, err
	}

	return scanSummaries(rows)
}

func (db *PgGoChatRepository) SearchAccounts(ctx context.Context, excludeId int, name string, limit int) ([]UserSummary, error) {
	rows, err := db.conn.QueryContext(
		ctx,
		"SELECT id, full_name, profile_pic FROM accounts "+
			"WHERE id <> $1 AND full_name ILIKE '%' || $2 || '%' ORDER BY full_name, id LIMIT $3",
		excludeId,
		name,
		limit,
	)
	if err != nil {
		return nil, err
	}

	return scanSummaries(rows)
}

// UpdateFriendPair locks both accounts, hands them to fn and writes back
// their friend lists in a single transaction. sql.ErrNoRows is returned when
// either account does not exist.
func (db *PgGoChatRepository) UpdateFriendPair(ctx context.Context, aId, bId int, fn FriendPairFunc) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// rows are locked in id order so two requests on the same pair cannot deadlock
	ids := []int{aId, bId}
	slices.Sort(ids)
	rows, err := tx.QueryContext(
		ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ANY($1) ORDER BY id FOR UPDATE",
		toInt64Array(ids),
	)
	if err != nil {
		return err
	}

	locked := make(map[int]*User, 2)
	for rows.Next() {
		u, scanErr := scanUser(rows)
		if scanErr != nil {
			rows.Close()
			err = fmt.Errorf("scan row: %w", scanErr)
			return err
		}
		locked[u.Id] = &u
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return err
	}

	a, b := locked[aId], locked[bId]
	if a == nil || b == nil {
		err = sql.ErrNoRows
		return err
	}

	if err = fn(a, b); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, u := range []*User{a, b} {
		_, err = tx.ExecContext(
			ctx,
			"UPDATE accounts SET friends = $2, friend_requests = $3, updated_at = $4 WHERE id = $1",
			u.Id,
			toInt64Array(u.Friends),
			toInt64Array(u.FriendRequests),
			now,
		)
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

func (db *PgGoChatRepository) ListFriends(ctx context.Context, id int) ([]UserSummary, error) {
	rows, err := db.conn.QueryContext(
		ctx,
		"SELECT a.id, a.full_name, a.profile_pic FROM accounts u "+
			"CROSS JOIN LATERAL unnest(u.friends) WITH ORDINALITY AS f(friend_id, ord) "+
			"JOIN accounts a ON a.id = f.friend_id WHERE u.id = $1 ORDER BY f.ord",
		id,
	)
	if err != nil {
		return nil, err
	}

	return scanSummaries(rows)
}

func (db *PgGoChatRepository) ListReceivedRequests(ctx context.Context, id int) ([]UserSummary, error) {
	rows, err := db.conn.QueryContext(
		ctx,
		"SELECT a.id, a.full_name, a.profile_pic FROM accounts u "+
			"CROSS JOIN LATERAL unnest(u.friend_requests) WITH ORDINALITY AS r(requester_id, ord) "+
			"JOIN accounts a ON a.id = r.requester_id WHERE u.id = $1 ORDER BY r.ord",
		id,
	)
	if err != nil {
		return nil, err
	}

	return scanSummaries(rows)
}

// ListSentRequests scans every other account for a pending request that
// names id. There is no reverse index, so the cost grows with the user count.
func (db *PgGoChatRepository) ListSentRequests(ctx context.Context, id int) ([]UserSummary, error) {
	rows, err := db.conn.QueryContext(
		ctx,
		"SELECT id, full_name, profile_pic FROM accounts WHERE id <> $1 AND $1 = ANY(friend_requests) ORDER BY id",
		id,
	)
	if err != nil {
		return nil, err
	}

	return scanSummaries(rows)
}

func (db *PgGoChatRepository) CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error) {
	row := db.conn.QueryRowContext(
		ctx,
		"INSERT INTO messages (external_id, sender_id, receiver_id, text, image, created_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING "+messageColumns,
		params.ExternalId,
		params.SenderId,
		params.ReceiverId,
		params.Text,
		params.Image,
		time.Now().UTC(),
	)

	var msg Message
	err := row.Scan(
		&msg.Id,
		&msg.ExternalId,
		&msg.SenderId,
		&msg.ReceiverId,
		&msg.Text,
		&msg.Image,
		&msg.CreatedAt,
	)

	return msg, err
}

// GetMessages returns up to limit messages exchanged between two accounts
// with an id lower than before, oldest first.
func (db *PgGoChatRepository) GetMessages(ctx context.Context, accountId, otherId, before, limit int) ([]Message, error) {
	upper := 1<<31 - 1
	if before > 0 {
		upper = before
	}

	if limit <= 0 {
		limit = defaultMessageLimit
	}

	rows, err := db.conn.QueryContext(
		ctx,
		"SELECT "+messageColumns+" FROM messages "+
			"WHERE LEAST(sender_id, receiver_id) = LEAST($1::int, $2::int) "+
			"AND GREATEST(sender_id, receiver_id) = GREATEST($1::int, $2::int) "+
			"AND id < $3 ORDER BY id DESC LIMIT $4",
		accountId,
		otherId,
		upper,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.Id, &msg.ExternalId, &msg.SenderId, &msg.ReceiverId, &msg.Text, &msg.Image, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	slices.Reverse(messages)
	return messages, nil
}
