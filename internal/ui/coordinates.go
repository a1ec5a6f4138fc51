package ui

// Screen geometry for a 1280x720 emulator display.

const (
	ScreenWidth  = 1280
	ScreenHeight = 720

	// SlotCount is the number of research projects shown in the carousel.
	SlotCount = 5
	// CenterSlot is the carousel position a selected project scrolls to.
	CenterSlot = 2
)

// ResearchEntrance are the five visual carousel positions, left to right.
var ResearchEntrance = [SlotCount]Button{
	{Name: "RESEARCH_ENTRANCE_1", Area: rect(98, 215, 256, 490)},
	{Name: "RESEARCH_ENTRANCE_2", Area: rect(310, 210, 470, 500)},
	{Name: "RESEARCH_ENTRANCE_3", Area: rect(540, 170, 740, 540)},
	{Name: "RESEARCH_ENTRANCE_4", Area: rect(810, 210, 970, 500)},
	{Name: "RESEARCH_ENTRANCE_5", Area: rect(1024, 215, 1182, 490)},
}

// EmptyCardColor is the carousel background behind a position holding no project.
var EmptyCardColor = rgb(28, 32, 45)

// ResearchStatus are the status lamps under each carousel position. Green means
// the project has finished, blue that it is still running.
var ResearchStatus = [SlotCount]Button{
	{Name: "STATUS_1", Area: rect(160, 505, 194, 513)},
	{Name: "STATUS_2", Area: rect(374, 515, 408, 523)},
	{Name: "STATUS_3", Area: rect(622, 556, 658, 566)},
	{Name: "STATUS_4", Area: rect(872, 515, 906, 523)},
	{Name: "STATUS_5", Area: rect(1086, 505, 1120, 513)},
}

var (
	// ResearchCheck is visible on the research page while no project detail is open.
	ResearchCheck = Button{Name: "RESEARCH_CHECK", Area: rect(22, 14, 126, 40), Color: rgb(239, 239, 239)}

	ResetAvailable = Button{Name: "RESET_AVAILABLE", Area: rect(1092, 640, 1190, 668), Color: rgb(82, 186, 247)}

	ResearchStart       = Button{Name: "RESEARCH_START", Area: rect(932, 612, 1074, 650), Color: rgb(247, 203, 74)}
	ResearchStop        = Button{Name: "RESEARCH_STOP", Area: rect(932, 612, 1074, 650), Color: rgb(206, 69, 57)}
	ResearchUnavailable = Button{Name: "RESEARCH_UNAVAILABLE", Area: rect(932, 612, 1074, 650), Color: rgb(123, 125, 123)}
	ResearchSelectQuit  = Button{Name: "RESEARCH_SELECT_QUIT", Area: rect(1196, 80, 1250, 124), Color: rgb(255, 255, 255)}

	// StableChecker covers the carousel; StableCheckerCenter only the centred project.
	StableChecker       = Button{Name: "STABLE_CHECKER", Area: rect(98, 170, 1182, 566)}
	StableCheckerCenter = Button{Name: "STABLE_CHECKER_CENTER", Area: rect(540, 170, 740, 540)}

	GetItems1            = Button{Name: "GET_ITEMS_1", Area: rect(533, 162, 747, 192), Color: rgb(250, 218, 99)}
	GetItems2            = Button{Name: "GET_ITEMS_2", Area: rect(533, 120, 747, 150), Color: rgb(250, 218, 99)}
	GetItems3            = Button{Name: "GET_ITEMS_3", Area: rect(533, 78, 747, 108), Color: rgb(250, 218, 99)}
	GetItemsResearchSave = Button{Name: "GET_ITEMS_RESEARCH_SAVE", Area: rect(1148, 24, 1256, 60), Color: rgb(255, 255, 255), Click: rect(10, 640, 1270, 710)}
	Items3Swipe          = Button{Name: "ITEMS_3_SWIPE", Area: rect(280, 330, 1000, 520)}

	PopupConfirm = Button{Name: "POPUP_CONFIRM", Area: rect(714, 476, 876, 518), Color: rgb(82, 158, 222)}
	InfoBar      = Button{Name: "INFO_BAR", Area: rect(420, 316, 860, 346), Color: rgb(66, 69, 74)}

	// Shown on the reward page.
	ResearchFinished   = Button{Name: "RESEARCH_FINISHED", Area: rect(1030, 290, 1072, 308), Color: rgb(107, 235, 99)}
	ResearchPending    = Button{Name: "RESEARCH_PENDING", Area: rect(1030, 290, 1072, 308), Color: rgb(82, 158, 222)}
	RewardGotoResearch = Button{Name: "REWARD_GOTO_RESEARCH", Area: rect(960, 250, 1140, 350), Color: rgb(45, 51, 66)}
)
