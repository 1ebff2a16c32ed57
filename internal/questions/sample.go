package questions

// SampleTossups seeds a MemorySource for development and tests.
func SampleTossups() []*Tossup {
	return []*Tossup{
		{
			Question:       "This physicist formulated three laws of motion in his Principia Mathematica and developed calculus independently of Leibniz. (*) He also described universal gravitation after observing a falling apple, for 10 points, name this English scientist.",
			Answer:         "Isaac Newton [or Sir Isaac Newton]",
			SetName:        "Sample Set 2024",
			Category:       "Science",
			Subcategory:    "Physics",
			Difficulty:     3,
			PacketNumber:   1,
			QuestionNumber: 1,
			Year:           2024,
			Standard:       true,
		},
		{
			Question:       "This author wrote about Raskolnikov, a student who murders a pawnbroker in Saint Petersburg. (*) For 10 points, name this Russian author of The Brothers Karamazov and Crime and Punishment.",
			Answer:         "Fyodor Dostoevsky [or Fyodor Mikhailovich Dostoevsky; prompt on Fyodor]",
			SetName:        "Sample Set 2024",
			Category:       "Literature",
			Subcategory:    "European Literature",
			Difficulty:     3,
			PacketNumber:   1,
			QuestionNumber: 2,
			Year:           2024,
			Standard:       true,
		},
		{
			Question:       "This river's delta contains the Rosetta branch, and it floods annually due to rains in the Ethiopian highlands. (*) The Aswan High Dam spans, for 10 points, what longest river in Africa flowing through Egypt.",
			Answer:         "Nile River [or an-Nil]",
			SetName:        "Sample Set 2024",
			Category:       "Geography",
			Subcategory:    "World Geography",
			Difficulty:     2,
			PacketNumber:   2,
			QuestionNumber: 1,
			Year:           2024,
			Standard:       true,
		},
		{
			Question:       "This composer wrote a symphony originally dedicated to Napoleon, later renamed Eroica, and lost his hearing while composing. (*) For 10 points, name this German composer of the Ninth Symphony and its Ode to Joy.",
			Answer:         "Ludwig van Beethoven",
			SetName:        "Sample Set 2023",
			Category:       "Fine Arts",
			Subcategory:    "Music",
			Difficulty:     2,
			PacketNumber:   1,
			QuestionNumber: 1,
			Year:           2023,
			Standard:       true,
		},
		{
			Question:       "This battle in 1066 saw William of Normandy defeat the Anglo-Saxon king Harold Godwinson, (*) beginning the Norman conquest of, for 10 points, what country.",
			Answer:         "Battle of Hastings [accept England after conquest is read]",
			SetName:        "Sample Set 2023",
			Category:       "History",
			Subcategory:    "European History",
			Difficulty:     2,
			PacketNumber:   2,
			QuestionNumber: 1,
			Year:           2023,
			Standard:       false,
		},
	}
}
