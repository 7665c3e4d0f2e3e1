package constants

// Centralized constants for env keys, routes, API errors and OpenAI integration.
const (
	// Environment variable keys
	EnvAddr         = "BATTLE_ADDR"
	EnvDatabasePath = "BATTLE_DB"
	EnvContentFile  = "BATTLE_CONTENT"
	EnvSeed         = "BATTLE_SEED"
	EnvJudge        = "BATTLE_JUDGE"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	ContentTypeJSON = "application/json"

	// Authorization prefix
	BearerPrefix = "Bearer "

	// OpenAI API endpoints and base URL
	OpenAIBaseURL             = "https://api.openai.com"
	OpenAIChatCompletionsPath = "/v1/chat/completions"

	// OpenAI model names
	OpenAIChatModel = "gpt-5-nano"

	// Judge implementations selectable through EnvJudge
	JudgeScripted = "scripted"
	JudgeOpenAI   = "openai"
)

// Routes used by the backend router
const (
	RouteAPIPrefix       = "/api"
	RouteVersion         = "/version"
	RouteHealth          = "/health"
	RouteEncounters      = "/encounters"
	RouteEncounterByID   = "/encounters/:encounterID"
	RouteEncounterPlay   = "/encounters/:encounterID/play"
	RouteEncounterEnd    = "/encounters/:encounterID/end-turn"
	RouteEncounterEffect = "/encounters/:encounterID/effects"
	RouteEncounterLogs   = "/encounters/:encounterID/logs"
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyDetails = "details"
	JSONKeyStatus  = "status"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest        = "Invalid request"
	ErrInvalidEncounterID    = "Invalid encounter ID"
	ErrEncounterNotFound     = "Encounter not found"
	ErrEncounterFinished     = "Encounter already finished"
	ErrFailedCreateEncounter = "Failed to create encounter"
	ErrFailedPlayCards       = "Failed to resolve played cards"
	ErrFailedEndTurn         = "Failed to end turn"
	ErrFailedApplyEffects    = "Failed to apply effects"
	ErrFailedFetchLogs       = "Failed to fetch battle logs"
	ErrUnknownContentKey     = "Unknown content key"
	ErrCardNotInHand         = "Card not in hand"
	ErrNoCardsPlayed         = "No cards played"
)

// Logging field names
const (
	LogFieldEncounterID = "encounter_id"
	LogFieldBattler     = "battler"
	LogFieldStatus      = "status"
	LogFieldSpan        = "span"
	LogFieldClause      = "clause"
	LogFieldRule        = "rule"
	LogFieldTurn        = "turn"
	LogFieldSource      = "source"
	LogFieldName        = "name"
	LogFieldKey         = "key"
	LogFieldAddr        = "addr"
	LogFieldPath        = "path"
)
