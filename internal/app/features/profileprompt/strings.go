package profileprompt

// User-facing text.
const (
	PromptTitle    = "Complete your profile"
	PromptBody     = "Some required profile details are still missing. Fill them now to continue with a complete account."
	PromptButton   = "Fill missing fields"
	ModalTitle     = "Complete your profile"
	SaveButton     = "Save changes"
	FormHeader     = "Please complete the following profile fields."
	SavedSuccess   = "Profile updated successfully."
	NothingMissing = "Your profile is complete."

	msgRequired     = "Required"
	msgInvalidEmail = "Invalid email address"
	msgCountry      = "Select a country from the list."
	msgTooLong      = "Too long."

	// PromptDelayMS is how long the notification stays before fading.
	PromptDelayMS = 6000

	// FormID identifies the modal form element.
	FormID = "profilecompletion-form"
	// FormURL serves and accepts the form.
	FormURL = "/profile-completion"
)
