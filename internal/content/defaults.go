package content

// DefaultAffirmations is written to the data directory on first start.
var DefaultAffirmations = Affirmations{
	General: []string{
		"You are loved exactly as you are.",
		"Your identity is valid and beautiful.",
		"I'm so proud of you for being your authentic self.",
		"You deserve all the happiness in the world.",
		"You are strong, brave, and resilient.",
		"Your journey is your own, and it's perfect.",
		"You are making a difference just by being you.",
		"I believe in you completely.",
		"You are enough, just as you are.",
		"Your feelings are valid and important.",
	},
	Comfort: []string{
		"I'm here for you, no matter what.",
		"It's okay to not be okay sometimes.",
		"This difficult time will pass, I promise.",
		"You're not alone in this struggle.",
		"Take all the time you need to heal.",
		"Your pain matters, and so do you.",
		"I'm sending you a big virtual hug right now.",
		"You've gotten through hard times before, and you'll get through this too.",
		"It's okay to ask for help when you need it.",
		"I love you unconditionally, through good times and bad.",
	},
}

// DefaultResources is written to the data directory on first start.
var DefaultResources = Resources{
	{Name: "communities", Resources: []Resource{
		{Name: "r/trans", URL: "https://www.reddit.com/r/trans/", Description: "Transgender community on Reddit"},
		{Name: "r/lgbtindia", URL: "https://www.reddit.com/r/lgbtindia/", Description: "LGBTQ+ community in India"},
		{Name: "r/transmtf", URL: "https://www.reddit.com/r/MtF/", Description: "Community for trans women"},
	}},
	{Name: "youtube", Resources: []Resource{
		{Name: "Jammidodger", URL: "https://www.youtube.com/c/Jammidodger94", Description: "Trans educator and entertainer"},
		{Name: "Contrapoints", URL: "https://www.youtube.com/c/ContraPoints", Description: "Video essays on gender, politics, and philosophy"},
	}},
	{Name: "support", Resources: []Resource{
		{Name: "Trevor Project", URL: "https://www.thetrevorproject.org/", Description: "Crisis intervention and suicide prevention for LGBTQ+ youth"},
		{Name: "GLAAD", URL: "https://www.glaad.org/", Description: "Media advocacy organization for LGBTQ+ acceptance"},
	}},
}
