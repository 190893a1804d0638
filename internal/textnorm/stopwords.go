package textnorm

import "strings"

// languageAliases maps accepted language names and ISO codes to canonical names.
var languageAliases = map[string]string{
	"en": "english", "english": "english",
	"fr": "french", "french": "french",
	"es": "spanish", "spanish": "spanish",
	"de": "german", "german": "german",
	"it": "italian", "italian": "italian",
	"pt": "portuguese", "portuguese": "portuguese",
	"nl": "dutch", "dutch": "dutch",
	"ru": "russian", "russian": "russian",
	"ar": "arabic", "arabic": "arabic",
}

// CanonicalLanguage resolves a language name or code; unknown values map to english.
func CanonicalLanguage(lang string) string {
	if c, ok := languageAliases[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return c
	}
	return "english"
}

// StopWords returns the stop-word set for a language. The second result is
// false when the language has no list and English was substituted.
func StopWords(lang string) (map[string]struct{}, bool) {
	words, ok := stopLists[CanonicalLanguage(lang)]
	if !ok {
		return englishStops, false
	}
	return words, true
}

func wordSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

var englishStops = wordSet(`i me my myself we our ours ourselves you you're you've you'll you'd
your yours yourself yourselves he him his himself she she's her hers herself it it's its itself
they them their theirs themselves what which who whom this that that'll these those am is are
was were be been being have has had having do does did doing a an the and but if or because as
until while of at by for with about against between into through during before after above
below to from up down in out on off over under again further then once here there when where
why how all any both each few more most other some such no nor not only own same so than too
very s t can will just don don't should should've now d ll m o re ve y ain aren aren't couldn
couldn't didn didn't doesn doesn't hadn hadn't hasn hasn't haven haven't isn isn't ma mightn
mightn't mustn mustn't needn needn't shan shan't shouldn shouldn't wasn wasn't weren weren't
won won't wouldn wouldn't`)

var stopLists = map[string]map[string]struct{}{
	"english": englishStops,
	"french": wordSet(`au aux avec ce ces dans de des du elle en et eux il ils je la le les leur lui
ma mais me même mes moi mon ne nos notre nous on ou par pas pour qu que qui sa se ses son sur ta
te tes toi ton tu un une vos votre vous c d j l à m n s t y été étée étées étés étant suis es est
sommes êtes sont serai seras sera serons serez seront serais serait serions seriez seraient étais
était étions étiez étaient fus fut fûmes fûtes furent sois soit soyons soyez soient ai as avons
avez ont aurai auras aura aurons aurez auront avais avait avions aviez avaient eu eus eut eûmes
eûtes eurent aie aies ait ayons ayez aient ceci cela celà cet cette ici ils les leurs quel quels
quelle quelles sans soi`),
	"spanish": wordSet(`de la que el en y a los del se las por un para con no una su al lo como
más pero sus le ya o este sí porque esta entre cuando muy sin sobre también me hasta hay donde
quien desde todo nos durante todos uno les ni contra otros ese eso ante ellos e esto mí antes
algunos qué unos yo otro otras otra él tanto esa estos mucho quienes nada muchos cual poco ella
estar estas algunas algo nosotros mi mis tú te ti tu tus ellas nosotras vosotros vosotras os mío
mía míos mías tuyo tuya tuyos tuyas suyo suya suyos suyas nuestro nuestra nuestros nuestras
vuestro vuestra vuestros vuestras esos esas estoy estás está estamos estáis están es son fue era
eran ser soy eres somos sois he has ha hemos habéis han había`),
	"german": wordSet(`aber alle allem allen aller alles als also am an ander andere anderem
anderen anderer anderes anderm andern anderr anders auch auf aus bei bin bis bist da damit dann
der den des dem die das dass daß derselbe derselben denselben desselben demselben dieselbe
dieselben dasselbe dazu dein deine deinem deinen deiner deines denn derer dessen dich dir du
dies diese diesem diesen dieser dieses doch dort durch ein eine einem einen einer eines einig
einige einigem einigen einiger einiges einmal er ihn ihm es etwas euer eure eurem euren eurer
eures für gegen gewesen hab habe haben hat hatte hatten hier hin hinter ich mich mir ihr ihre
ihrem ihren ihrer ihres euch im in indem ins ist jede jedem jeden jeder jedes jene jenem jenen
jener jenes jetzt kann kein keine keinem keinen keiner keines können könnte machen man manche
manchem manchen mancher manches mein meine meinem meinen meiner meines mit muss musste nach
nicht nichts noch nun nur ob oder ohne sehr sein seine seinem seinen seiner seines selbst sich
sie ihnen sind so solche solchem solchen solcher solches soll sollte sondern sonst über um und
uns unsere unserem unseren unser unseres unter viel vom von vor während war waren warst was weg
weil weiter welche welchem welchen welcher welches wenn werde werden wie wieder will wir wird
wirst wo wollen wollte würde würden zu zum zur zwar zwischen`),
	"italian": wordSet(`ad al allo ai agli all agl alla alle con col coi da dal dallo dai dagli
dall dagl dalla dalle di del dello dei degli dell degl della delle in nel nello nei negli nell
negl nella nelle su sul sullo sui sugli sull sugl sulla sulle per tra contro io tu lui lei noi
voi loro mio mia miei mie tuo tua tuoi tue suo sua suoi sue nostro nostra nostri nostre vostro
vostra vostri vostre mi ti ci vi lo la li le gli ne il un uno una ma ed se perché anche come dov
dove che chi cui non più quale quanto quanti quanta quante quello quelli quella quelle questo
questi questa queste si tutto tutti a c e i l o ho hai ha abbiamo avete hanno sono sei è siamo
siete era erano fui fu stato stata`),
	"portuguese": wordSet(`a à ao aos aquela aquelas aquele aqueles aquilo as às até com como da
das de dela delas dele deles depois do dos e é ela elas ele eles em entre era eram essa essas
esse esses esta está estão estas este estes eu foi fomos for foram há isso isto já lhe lhes
mais mas me mesmo meu meus minha minhas muito na não nas nem no nos nós nossa nossas nosso
nossos num numa o os ou para pela pelas pelo pelos por qual quando que quem se seja sem ser
seu seus só sua suas também te tem têm tinha tu tua tuas um uma você vocês vos`),
	"dutch": wordSet(`de en van ik te dat die in een hij het niet zijn is was op aan met als
voor had er maar om hem dan zou of wat mijn men dit zo door over ze zich bij ook tot je mij uit
der daar haar naar heb hoe heeft hebben deze u want nog zal me zij nu ge geen omdat iets worden
toch al waren veel meer doen toen moet ben zonder kan hun dus alles onder ja eens hier wie werd
altijd doch wordt wezen kunnen ons zelf tegen na reeds wil kon niets uw iemand geweest andere`),
}
