package catalog

import "soundsteps/internal/models"

var seedCategories = []models.Category{
	{
		ID:          "awareness",
		Name:        "Sound Awareness",
		Description: "Noticing the presence and absence of sound",
		Order:       1,
	},
	{
		ID:          "discrimination",
		Name:        "Sound Discrimination",
		Description: "Telling whether two sounds are the same or different",
		Order:       2,
	},
	{
		ID:          "identification",
		Name:        "Sound Identification",
		Description: "Recognising and naming familiar sounds and words",
		Order:       3,
	},
	{
		ID:          "comprehension",
		Name:        "Auditory Comprehension",
		Description: "Understanding sentences, questions and stories through listening",
		Order:       4,
	},
}

const videoBaseURL = "https://media.soundsteps.app/videos/"

var seedVideos = []models.Video{
	{ID: "aw-01", CategoryID: "awareness", Order: 1, Title: "Is there a sound?", Description: "Respond when the drum plays and rest when it stops", URL: videoBaseURL + "aw-01.mp4", DurationMs: 240000},
	{ID: "aw-02", CategoryID: "awareness", Order: 2, Title: "Sounds around the house", Description: "Doorbells, kettles and phones", URL: videoBaseURL + "aw-02.mp4", DurationMs: 300000, IsLocked: true},
	{ID: "aw-03", CategoryID: "awareness", Order: 3, Title: "Listening walk", Description: "Finding sounds outdoors", URL: videoBaseURL + "aw-03.mp4", DurationMs: 360000, IsLocked: true},

	{ID: "di-01", CategoryID: "discrimination", Order: 1, Title: "Loud and quiet", Description: "Comparing the loudness of two sounds", URL: videoBaseURL + "di-01.mp4", DurationMs: 270000},
	{ID: "di-02", CategoryID: "discrimination", Order: 2, Title: "Long and short", Description: "Comparing sound duration", URL: videoBaseURL + "di-02.mp4", DurationMs: 280000, IsLocked: true},
	{ID: "di-03", CategoryID: "discrimination", Order: 3, Title: "High and low", Description: "Comparing pitch with animal voices", URL: videoBaseURL + "di-03.mp4", DurationMs: 310000, IsLocked: true},

	{ID: "id-01", CategoryID: "identification", Order: 1, Title: "Learning to Listen sounds", Description: "Pairing toys with their sounds", URL: videoBaseURL + "id-01.mp4", DurationMs: 330000},
	{ID: "id-02", CategoryID: "identification", Order: 2, Title: "Choosing from a set", Description: "Picking the named object from two, then three", URL: videoBaseURL + "id-02.mp4", DurationMs: 350000, IsLocked: true},
	{ID: "id-03", CategoryID: "identification", Order: 3, Title: "Family names", Description: "Recognising the names of family members", URL: videoBaseURL + "id-03.mp4", DurationMs: 290000, IsLocked: true},

	{ID: "co-01", CategoryID: "comprehension", Order: 1, Title: "Following directions", Description: "One-step and two-step instructions", URL: videoBaseURL + "co-01.mp4", DurationMs: 380000},
	{ID: "co-02", CategoryID: "comprehension", Order: 2, Title: "Answering questions", Description: "Who, what and where questions", URL: videoBaseURL + "co-02.mp4", DurationMs: 400000, IsLocked: true},
	{ID: "co-03", CategoryID: "comprehension", Order: 3, Title: "Story time", Description: "Listening to a short story and retelling it", URL: videoBaseURL + "co-03.mp4", DurationMs: 450000, IsLocked: true},
}
