package constant

const (
	// Sender vocabulary stored on messages. Providers translate these to
	// their own role names at the gateway boundary.
	MessageSenderUser = "user"
	MessageSenderBot  = "bot"
)

const (
	// UntitledConversation is the placeholder before the first user message
	// rewrites it.
	UntitledConversation = "New Thread"

	// MaxTraits bounds the preferences trait list.
	MaxTraits = 50
)

// GenerationFailedTemplate becomes the bot message content when the model
// gateway reports an error. The %v is the underlying failure.
const GenerationFailedTemplate = "Sorry, I couldn't generate a response: %v. Please check your API keys in Settings and try again."

// Seed content for a new user's welcome conversation.
const (
	WelcomeConversationTitle = "Welcome to MultiChat!"
	WelcomeUserMessage       = "Welcome to MultiChat! How can I help you today?"
	WelcomeBotMessage        = "Hello! Welcome to MultiChat!\n\n" +
		"I'm here to help you with anything you need. You can:\n\n" +
		"- Ask questions about programming, technology, or any topic\n" +
		"- Switch between different AI models (GPT-4o, Gemini, etc.) using the dropdown\n" +
		"- Create multiple chat conversations using the 'New Chat' button\n" +
		"- Search through your conversation history\n\n" +
		"What would you like to explore today?"
	WelcomeBotModel = "Gemini 2.0 Flash"

	GuideConversationTitle = "How to use multiple models"
)
