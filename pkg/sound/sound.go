// Package sound holds the robot's phrase catalogue and the helpers that map
// phrases to recordings and speech.
package sound

import (
	"regexp"
	"strings"
)

// Sound is a phrase the robot has a recording for.
type Sound string

const (
	BringHimToMe               Sound = "Bring him to me"
	CanIBeOfAssistance         Sound = "Can I be of assistance?"
	CeaseTalking               Sound = "Cease talking"
	CommenceAwakening          Sound = "Commence awakening"
	DaleksAreSupreme           Sound = "Daleks are supreme"
	DaleksDoNotQuestionOrders  Sound = "Daleks do not question orders"
	DaleksHaveNoConceptOfWorry Sound = "Daleks have no concept of worry"
	Doctor                     Sound = "Doctor?"
	Explain                    Sound = "Explain"
	Exterminate                Sound = "Exterminate!"
	Exterminate3               Sound = "Exterminate, exterminate, exterminate!"
	Gun                        Sound = "Gun"
	IdentifyYourself           Sound = "Identify yourself"
	ItIsTheDoctor              Sound = "It is the Doctor"
	IBringYouTheHuman          Sound = "I bring you the human"
	IHaveDutiesToPerform       Sound = "I have duties to perform"
	PleaseExcuseMe             Sound = "Please excuse me"
	Report                     Sound = "Report"
	SocialInteractionWillCease Sound = "Social interaction will cease"
	StatusHibernation          Sound = "Status hibernation"
	ThatIsIncorrect            Sound = "That is incorrect"
	ThenHearMeTalkNow          Sound = "Then hear me talk now"
	TheDoctor                  Sound = "The Doctor?"
	TheDoctorMustDie           Sound = "The Doctor must die"
	ThisHumanIsOurBestOption   Sound = "This human is our best option"
	WhichOfYouIsLeastImportant Sound = "Which of you is least important?"
	Why                        Sound = "Why?"
	WouldYouCareForSomeTea     Sound = "Would you care for some tea?"
	YourLoyaltyWillBeRewarded  Sound = "Your loyalty will be rewarded"
	YouWillBeNecessary         Sound = "You will be necessary"
	YouWillFollow              Sound = "You will follow"
	YouWillIdentify            Sound = "You will identify"
	YouWouldMakeAGoodDalek     Sound = "You would make a good Dalek"
)

// All lists every catalogued sound.
var All = []Sound{
	BringHimToMe, CanIBeOfAssistance, CeaseTalking, CommenceAwakening,
	DaleksAreSupreme, DaleksDoNotQuestionOrders, DaleksHaveNoConceptOfWorry,
	Doctor, Explain, Exterminate, Exterminate3, Gun, IdentifyYourself,
	ItIsTheDoctor, IBringYouTheHuman, IHaveDutiesToPerform, PleaseExcuseMe,
	Report, SocialInteractionWillCease, StatusHibernation, ThatIsIncorrect,
	ThenHearMeTalkNow, TheDoctor, TheDoctorMustDie, ThisHumanIsOurBestOption,
	WhichOfYouIsLeastImportant, Why, WouldYouCareForSomeTea,
	YourLoyaltyWillBeRewarded, YouWillBeNecessary, YouWillFollow,
	YouWillIdentify, YouWouldMakeAGoodDalek,
}

func (s Sound) String() string {
	return string(s)
}

// Filename returns the base name of the recording for s.
func (s Sound) Filename() string {
	return Filename(string(s))
}

var (
	nonFilename = regexp.MustCompile(`[^a-z0-9-]`)
	dalek       = regexp.MustCompile(`(?i)dalek`)
)

// Filename maps text to the base name of its recording: lower case, spaces
// become dashes and anything else outside [a-z0-9-] is dropped.
func Filename(text string) string {
	text = strings.ReplaceAll(strings.ToLower(text), " ", "-")
	return nonFilename.ReplaceAllString(text, "")
}

// Espeakify rewrites text so the speech synthesiser pronounces it properly.
func Espeakify(text string) string {
	return dalek.ReplaceAllString(text, "Dahlek")
}
