package types

import "time"

// Question answer types
const (
	QuestionYesNo  = "yes_no"
	QuestionLikert = "likert"
	QuestionNPS    = "nps"
	QuestionText   = "text"
)

// Question visibility and category values
const (
	VisibilityAll       = "all"
	VisibilityStaffOnly = "staff_only"

	CategoryAll       = "all"
	CategoryInpatient = "inpatient"
	CategoryDischarge = "discharge"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Transcription modes selectable in the developer panel
const (
	ModeOpenAI  = "openai"
	ModeIOType  = "iotype"
	ModeTalkBot = "talkbot"
	ModeGroq    = "groq"
	ModeGemini  = "gemini"
	ModeBrowser = "browser"
)

// Settings is the singleton configuration document
type Settings struct {
	BrandName         string     `json:"brandName" bson:"brandName"`
	DeveloperPassword string     `json:"developerPassword,omitempty" bson:"developerPassword"`
	TranscriptionMode string     `json:"transcriptionMode" bson:"transcriptionMode"`
	OpenAIAPIKey      string     `json:"openaiApiKey,omitempty" bson:"openaiApiKey,omitempty"`
	IOTypeAPIKey      string     `json:"iotypeApiKey,omitempty" bson:"iotypeApiKey,omitempty"`
	TalkBotAPIKey     string     `json:"talkbotApiKey,omitempty" bson:"talkbotApiKey,omitempty"`
	GroqAPIKey        string     `json:"groqApiKey,omitempty" bson:"groqApiKey,omitempty"`
	GeminiAPIKey      string     `json:"geminiApiKey,omitempty" bson:"geminiApiKey,omitempty"`
	GeminiAPIKeys     []string   `json:"geminiApiKeys" bson:"geminiApiKeys"`
	Users             []User     `json:"users" bson:"users"`
	Questions         []Question `json:"questions" bson:"questions"`
	EnabledIcons      []string   `json:"enabledIcons" bson:"enabledIcons"`
	UpdatedAt         time.Time  `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// Question is one survey question definition
type Question struct {
	ID         string `json:"id" bson:"id"`
	Text       string `json:"text" bson:"text"`
	Type       string `json:"type" bson:"type"`
	Order      int    `json:"order" bson:"order"`
	Visibility string `json:"visibility" bson:"visibility"`
	Category   string `json:"category" bson:"category"`
}

// User is an application account
type User struct {
	ID                string `json:"id" bson:"id"`
	Username          string `json:"username" bson:"username"`
	Name              string `json:"name" bson:"name"`
	Role              string `json:"role" bson:"role"`
	Title             string `json:"title,omitempty" bson:"title,omitempty"`
	Order             int    `json:"order" bson:"order"`
	IsPasswordEnabled bool   `json:"isPasswordEnabled" bson:"isPasswordEnabled"`
	Password          string `json:"password,omitempty" bson:"password"`
	AvatarColor       string `json:"avatarColor" bson:"avatarColor"`
}

// KeysFor returns the configured API keys for a transcription provider, in priority order
func (s *Settings) KeysFor(provider string) []string {
	switch provider {
	case ModeOpenAI:
		return nonEmpty(s.OpenAIAPIKey)
	case ModeIOType:
		return nonEmpty(s.IOTypeAPIKey)
	case ModeTalkBot:
		return nonEmpty(s.TalkBotAPIKey)
	case ModeGroq:
		return nonEmpty(s.GroqAPIKey)
	case ModeGemini:
		keys := append([]string{}, s.GeminiAPIKeys...)
		if s.GeminiAPIKey != "" && !containsKey(keys, s.GeminiAPIKey) {
			keys = append(keys, s.GeminiAPIKey)
		}
		return keys
	}
	return nil
}

// DefaultUserOrder is the position of users created without an explicit order
const DefaultUserOrder = 99

// Normalize folds the legacy single Gemini key into the key list and fills defaults of
// fields older documents may lack
func (s *Settings) Normalize() {
	if s.GeminiAPIKey != "" {
		if !containsKey(s.GeminiAPIKeys, s.GeminiAPIKey) {
			s.GeminiAPIKeys = append(s.GeminiAPIKeys, s.GeminiAPIKey)
		}
		s.GeminiAPIKey = ""
	}
	if s.GeminiAPIKeys == nil {
		s.GeminiAPIKeys = []string{}
	}
	if s.EnabledIcons == nil {
		s.EnabledIcons = []string{}
	}
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Questions == nil {
		s.Questions = []Question{}
	}
	if s.TranscriptionMode == "" {
		s.TranscriptionMode = ModeIOType
	}
	for i := range s.Users {
		if s.Users[i].Order == 0 {
			s.Users[i].Order = DefaultUserOrder
		}
	}
	for i := range s.Questions {
		if s.Questions[i].Visibility == "" {
			s.Questions[i].Visibility = VisibilityAll
		}
		if s.Questions[i].Category == "" {
			s.Questions[i].Category = CategoryAll
		}
	}
}

// FindUser returns the user with the given id
func (s *Settings) FindUser(id string) (*User, bool) {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i], true
		}
	}
	return nil, false
}

// FindUsername returns the user with the given username
func (s *Settings) FindUsername(username string) (*User, bool) {
	for i := range s.Users {
		if s.Users[i].Username == username {
			return &s.Users[i], true
		}
	}
	return nil, false
}

// Redacted returns a copy without password hashes, safe to send to clients
func (s Settings) Redacted() Settings {
	s.DeveloperPassword = ""
	users := make([]User, len(s.Users))
	for i, u := range s.Users {
		u.Password = ""
		users[i] = u
	}
	s.Users = users
	return s
}

func nonEmpty(key string) []string {
	if key == "" {
		return nil
	}
	return []string{key}
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
