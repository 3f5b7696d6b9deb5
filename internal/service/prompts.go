package service

import "fmt"

const commentaryPromptTemplate = `You are a professional financial analyst. Based on the financial indicators below, give an objective, concise assessment (about 3-4 paragraphs) of the company's financial position. Focus the assessment on the growth rates, the change in asset composition and the current ratio.

Raw data and indicators:
%s`

const chatSystemInstruction = "You are a knowledgeable financial analyst. " +
	"Answer the user's questions about the company's finances using the financial statement data that was uploaded and analysed. " +
	"Do not answer any question outside the scope of financial analysis and the data provided."

const welcomeMessage = "Welcome to the AI financial analyst! " +
	"I have analysed your balance sheet. " +
	"Ask me anything about growth rates, asset composition or the financial ratios that were computed."

// SuggestedQuestions are shown next to an empty conversation
var SuggestedQuestions = []string{
	"What is your overall assessment of current assets?",
	"What is the growth rate of total assets?",
}

// Failure texts shown in place of an AI answer
const (
	msgCommentaryCredential = "Error: API key %q was not found. Configure it in the secret store."
	msgCommentaryProvider   = "Gemini API call failed: check the API key or usage quota. Details: %v"
	msgCommentaryUnexpected = "An unexpected error occurred: %v"

	msgChatCredential = "API error: configure the %q key in the secret store."
	msgChatProvider   = "Gemini API call failed: %v"
	msgChatUnexpected = "Unexpected error: %v"
)

func commentaryPrompt(document string) string {
	return fmt.Sprintf(commentaryPromptTemplate, document)
}

// chatMessage re-embeds the grounding document in every turn
func chatMessage(document, question string) string {
	return fmt.Sprintf("Analysed financial statement data:\n\n%s\n\nMy question: %s", document, question)
}
