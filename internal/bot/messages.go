package bot

const (
	msgSomethingWrong = "Something went wrong on my side. Please try again later."
	msgGuildOnly      = "This command can only be used in a server."

	msgDMSent           = "I've sent you a DM with the confirmation."
	msgNoTriggers       = "You don't have any trigger words set."
	msgTriggerListDM    = "I've sent you a DM with your trigger list."
	msgTriggerListNoDM  = "I couldn't send you a DM. Please enable DMs for privacy with sensitive information."
	msgTriggerAddedNoDM = "Trigger word added. (Note: I tried to DM you but couldn't. Please enable DMs for privacy.)"
	footerPrivacy       = "Your privacy is important to me. This list is private."

	msgForgetDeleted   = "All your data has been deleted from my records."
	msgForgetNoData    = "You don't have any stored data."
	msgForgetCancelled = "Operation cancelled. Your data remains unchanged."
	msgForgetTimeout   = "Confirmation timed out. Your data remains unchanged."

	msgNoAffirmations = "I don't have any affirmations yet. Please add some first!"
	msgNoComfort      = "I don't have any comfort messages yet. Please add some first!"

	msgVentForbidden = "I don't have permission to create threads in this channel."
	msgVentFailed    = "I couldn't create a thread. Please try again later."
	msgVentGuildOnly = "Vent threads can only be created in a server channel."
	msgVentStillHere = "I'm still here if you need to talk. Take your time. 💜"

	msgNoResources = "I don't have any resources available yet."

	msgMemberNotFound   = "I couldn't find that member."
	msgWarnNoPerm       = "You don't have permission to warn users."
	msgMuteNoPerm       = "You don't have permission to timeout users."
	msgMuteBadDuration  = "Please provide a valid duration in minutes."
	msgMuteBotForbidden = "I don't have permission to timeout that user."
	msgMuteFailed       = "Failed to timeout the user. Please try again."
	noReason            = "No reason provided"
)

// ventReplies answer the first message in a vent thread.
var ventReplies = []string{
	"Thank you for sharing that with me. It takes courage to be vulnerable.",
	"I hear you, and your feelings are completely valid.",
	"I'm so proud of you for expressing yourself. That can be really hard sometimes.",
	"You're not alone in feeling this way. I'm here for you.",
	"Thank you for trusting me with your thoughts. Is there anything specific you need right now?",
	"It sounds like you're going through a lot. Remember to be gentle with yourself.",
}

// celebrations take the achievement as their only verb.
var celebrations = []string{
	"🎉 CONGRATULATIONS on %s! I'm so incredibly proud of you!",
	"🌟 That's amazing! %s is such a wonderful accomplishment!",
	"💖 My heart is bursting with pride! %s is worth celebrating!",
	"🎊 WOW! %s is a huge deal! You should be so proud of yourself!",
	"✨ Look at you go! %s is proof of your hard work and dedication!",
}

type prideFlag struct {
	name    string
	colors  []int
	message string
}

// prideFlags is ordered; the first entry is the fallback.
var prideFlags = []prideFlag{
	{"rainbow", []int{0xFF0000, 0xFF7F00, 0xFFFF00, 0x00FF00, 0x0000FF, 0x4B0082, 0x9400D3}, "Pride is about celebrating the beautiful diversity of the LGBTQIA+ community!"},
	{"trans", []int{0x55CDFC, 0xF7A8B8, 0xFFFFFF, 0xF7A8B8, 0x55CDFC}, "Trans rights are human rights! You are valid, seen, and loved."},
	{"bi", []int{0xD60270, 0x9B4F96, 0x0038A8}, "Bi visibility matters! Your identity is valid regardless of your relationship."},
	{"pan", []int{0xFF1B8D, 0xFFDA00, 0x1BB3FF}, "Pan pride! Love knows no gender boundaries."},
	{"ace", []int{0x000000, 0xA4A4A4, 0xFFFFFF, 0x810081}, "Ace pride! Your identity is valid and important."},
	{"nb", []int{0xFFF430, 0xFFFFFF, 0x9C59D1, 0x000000}, "Non-binary pride! Gender is a spectrum, and you are valid wherever you are on it."},
}
