package store

import (
	"time"

	"github.com/uptrace/bun"
)

type PlayerRow struct {
	bun.BaseModel `bun:"table:players"`

	ID              string    `bun:"id,pk"`
	FirstName       string    `bun:"first_name,notnull"`
	LastName        string    `bun:"last_name,notnull"`
	Email           string    `bun:"email,notnull,unique"`
	Company         string    `bun:"company"`
	JobTitle        string    `bun:"job_title"`
	CompanySize     string    `bun:"company_size"`
	Phone           string    `bun:"phone"`
	ProductInterest string    `bun:"product_interest"`
	MarketingOptIn  bool      `bun:"marketing_opt_in,notnull"`
	PartnerOptIn    bool      `bun:"partner_opt_in,notnull"`
	LeadScore       string    `bun:"lead_score,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

type GameRow struct {
	bun.BaseModel `bun:"table:games"`

	ID                string    `bun:"id,pk"`
	PlayerID          string    `bun:"player_id,notnull"`
	Status            string    `bun:"status,notnull"`
	FinalScore        int       `bun:"final_score,notnull"`
	QuestionsAnswered int       `bun:"questions_answered,notnull"`
	CorrectAnswers    int       `bun:"correct_answers,notnull"`
	PrizeLevel        string    `bun:"prize_level"`
	LifelinesUsed     string    `bun:"lifelines_used"`
	StartedAt         time.Time `bun:"started_at,notnull"`
	EndedAt           time.Time `bun:"ended_at,nullzero"`
}

type GameQuestionRow struct {
	bun.BaseModel `bun:"table:game_questions"`

	ID             int64     `bun:"id,pk,autoincrement"`
	GameID         string    `bun:"game_id,notnull"`
	QuestionNumber int       `bun:"question_number,notnull"`
	QuestionID     string    `bun:"question_id,notnull"`
	Question       string    `bun:"question,notnull"`
	Options        string    `bun:"options,notnull"`
	CorrectAnswer  string    `bun:"correct_answer,notnull"`
	SelectedAnswer string    `bun:"selected_answer"`
	IsCorrect      bool      `bun:"is_correct,notnull"`
	TimedOut       bool      `bun:"timed_out,notnull"`
	TimeSpentMs    int64     `bun:"time_spent_ms,notnull"`
	Difficulty     string    `bun:"difficulty"`
	Category       string    `bun:"category"`
	LifelinesUsed  string    `bun:"lifelines_used"`
	AnsweredAt     time.Time `bun:"answered_at,notnull"`
}

type LeaderboardRow struct {
	bun.BaseModel `bun:"table:leaderboard"`

	ID                int64     `bun:"id,pk,autoincrement"`
	GameID            string    `bun:"game_id,notnull"`
	Type              string    `bun:"type,notnull"`
	PlayerName        string    `bun:"player_name,notnull"`
	Company           string    `bun:"company"`
	Score             int       `bun:"score,notnull"`
	PrizeLevel        string    `bun:"prize_level"`
	QuestionsAnswered int       `bun:"questions_answered,notnull"`
	CorrectAnswers    int       `bun:"correct_answers,notnull"`
	Status            string    `bun:"status,notnull"`
	Won               bool      `bun:"won,notnull"`
	Date              time.Time `bun:"date,notnull"`
}

type PrizeRow struct {
	bun.BaseModel `bun:"table:prizes"`

	ID          string    `bun:"id,pk"`
	PlayerID    string    `bun:"player_id,notnull"`
	GameID      string    `bun:"game_id,notnull"`
	Type        string    `bun:"type,notnull"`
	Description string    `bun:"description"`
	Value       string    `bun:"value"`
	Code        string    `bun:"code,notnull,unique"`
	Claimed     bool      `bun:"claimed,notnull"`
	ExpiresAt   time.Time `bun:"expires_at,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
}

type QuestionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID            string    `bun:"id,pk"`
	Question      string    `bun:"question,notnull"`
	Options       string    `bun:"options,notnull"`
	CorrectAnswer string    `bun:"correct_answer,notnull"`
	Difficulty    string    `bun:"difficulty,notnull"`
	Category      string    `bun:"category"`
	Explanation   string    `bun:"explanation"`
	HostHint      string    `bun:"host_hint"`
	TimesUsed     int       `bun:"times_used,notnull"`
	Source        string    `bun:"source"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

// Index is a secondary index created by the schema migration.
type Index struct {
	Model   interface{}
	Name    string
	Columns []string
	Unique  bool
}

// Tables lists every model in creation order.
func Tables() []interface{} {
	return []interface{}{
		(*PlayerRow)(nil),
		(*GameRow)(nil),
		(*GameQuestionRow)(nil),
		(*LeaderboardRow)(nil),
		(*PrizeRow)(nil),
		(*QuestionRow)(nil),
	}
}

// Indexes lists the secondary indexes. The unique ones make recording idempotent.
func Indexes() []Index {
	return []Index{
		{Model: (*GameRow)(nil), Name: "games_player_id_idx", Columns: []string{"player_id"}},
		{Model: (*GameRow)(nil), Name: "games_started_at_idx", Columns: []string{"started_at"}},
		{Model: (*GameQuestionRow)(nil), Name: "game_questions_game_number_key", Columns: []string{"game_id", "question_number"}, Unique: true},
		{Model: (*LeaderboardRow)(nil), Name: "leaderboard_game_type_key", Columns: []string{"game_id", "type"}, Unique: true},
		{Model: (*LeaderboardRow)(nil), Name: "leaderboard_type_date_idx", Columns: []string{"type", "date"}},
		{Model: (*PrizeRow)(nil), Name: "prizes_player_type_key", Columns: []string{"player_id", "type"}, Unique: true},
		{Model: (*QuestionRow)(nil), Name: "questions_difficulty_idx", Columns: []string{"difficulty", "times_used"}},
	}
}
