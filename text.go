package main

import "github.com/Zachkp/netfield/internal/content"

var (
	AboutMe = `I love building software that’s both useful and fun, and I’m always curious about how things work behind the scenes.
	Most of my projects start with a simple idea and turn into a chance to learn something new, whether it’s exploring a
	different language, experimenting with tools, or solving tricky problems.
	When I’m not coding, you’ll usually find me training Muay Thai, shooting pool with friends,
	or chasing down a new challenge outside the screen.`

	ProjectOne = `A terminal-based email client built in Go with fuzzyfinder capabilities
	using the Charmbracelet TUI framework and go-imap.`

	ProjectTwo = `A terminal-based music streaming application built in Go with an elegant TUI
	interface, leveraging yt-dlp and mpv for seamless YouTube Music playback directly from the command line.`

	ProjectThree = `A machine learning-powered web application that uses TF-IDF vectorization and cosine
	similarity to recommend games based on content analysis, featuring interactive data visualizations and
	real-time filtering by user reviews and ratings.`

	ProjectFour = `A modern, responsive portfolio website built with Go and Gin, with a live network
	backdrop simulated on the server and streamed to the page over a websocket.`
)

func devicon(name string) string {
	return "https://cdn.jsdelivr.net/gh/devicons/devicon/icons/" + name + "/" + name + "-original.svg"
}

// portfolio is the record set seeded into the content store at startup.
var portfolio = content.Portfolio{
	Profile: content.Profile{
		Name:     "Zach",
		JobTitle: "Software Developer",
		About:    AboutMe,
		Email:    "zachkordaspotter@gmail.com",
		GitHub:   "https://github.com/Zachkp",
	},
	Projects: []content.Project{
		{
			Title:        "Terminal Mail",
			Description:  ProjectOne,
			Image:        "/images/mail.png",
			Technologies: []string{"Go", "Bubble Tea", "go-imap"},
			Features:     []string{"Fuzzy finding across folders", "Keyboard-only workflow"},
		},
		{
			Title:        "Terminal Music",
			Description:  ProjectTwo,
			Image:        "/images/music.png",
			Technologies: []string{"Go", "yt-dlp", "mpv"},
			Features:     []string{"YouTube Music search and playback", "Queue management from the TUI"},
		},
		{
			Title:        "Game Recommender",
			Description:  ProjectThree,
			Image:        "/images/games.png",
			Technologies: []string{"Python", "scikit-learn", "TF-IDF"},
			Features:     []string{"Content-based recommendations", "Filtering by reviews and ratings"},
		},
		{
			Title:        "Portfolio",
			Description:  ProjectFour,
			Image:        "/images/portfolio.png",
			GitHubURL:    "https://github.com/Zachkp/netfield",
			Technologies: []string{"Go", "Gin", "SQLite", "WebSocket"},
			Features:     []string{"Server-simulated particle backdrop", "Read-only content API"},
		},
	},
	Experience: []content.Experience{
		{
			Role:    "Presentation Expert",
			Company: "Target",
			Period:  "Aug 2023 - Present",
			Details: []string{
				"Executed over 300 merchandising transitions on tight timelines by organizing team workflows and adapting quickly to changing priorities",
				"Boosted operational efficiency by managing backroom inventory processes and streamlining communication between floor and logistics teams",
				"Enhanced pricing and signage accuracy across departments by standardizing daily checks and collaborating cross-functionally",
			},
		},
		{
			Role:    "Manager",
			Company: "Jasons Catered Events",
			Period:  "Aug 2016 - Present",
			Details: []string{
				"Improved client satisfaction by coordinating customized menus and ensuring all dietary requirements were accurately met",
				"Supported event technology by troubleshooting AV equipment and managing digital order tracking systems, reducing technical delays and improving communication",
				"Maintained supply inventory and coordinated timely delivery between venues, optimizing resource allocation and minimizing downtime.",
			},
		},
	},
	Education: []content.Education{
		{
			Degree:      "Bachelor of Computer Science",
			Institution: "Western Governors University",
			Period:      "Sept 2019 - May 2023",
			Details: []string{
				"Graduated Magna Cum Laude with 3.8 GPA",
				"Relevant coursework: Data Structures, Algorithms, Web Development",
				"Senior project: Machine Learning recommendation system",
			},
		},
		{
			Degree:      "Project Management",
			Institution: "Comptia",
			Period:      "July 2022 - Present",
			Details: []string{
				"Certified in agile project management methodology",
			},
		},
	},
	Skills: []content.SkillCategory{
		{Name: "Languages", Skills: []content.Skill{
			{Name: "Go", Logo: devicon("go"), Level: 90, Desc: "Servers, CLIs and terminal UIs."},
			{Name: "Python", Logo: devicon("python"), Level: 80, Desc: "Data work and machine learning."},
			{Name: "JavaScript", Logo: devicon("javascript"), Level: 75},
			{Name: "SQL", Logo: devicon("sqlite"), Level: 75},
		}},
		{Name: "Tools", Skills: []content.Skill{
			{Name: "Git", Logo: devicon("git"), Level: 85},
			{Name: "Docker", Logo: devicon("docker"), Level: 70},
			{Name: "Linux", Logo: devicon("linux"), Level: 80},
		}},
	},
}
