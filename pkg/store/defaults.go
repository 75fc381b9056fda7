package store

import "github.com/valentinpelus/survey-crm/pkg/types"

const (
	defaultBrandName         = "سامانه جهان امید سلامت"
	defaultDeveloperPassword = "111"
)

// DefaultSettings returns the settings seeded on first start and restored by a reset.
// Passwords are plain here; the store hashes them before writing.
func DefaultSettings() types.Settings {
	return types.Settings{
		BrandName:         defaultBrandName,
		DeveloperPassword: defaultDeveloperPassword,
		TranscriptionMode: types.ModeIOType,
		GeminiAPIKeys:     []string{},
		Users:             defaultUsers(),
		Questions:         defaultQuestions(),
		EnabledIcons:      []string{},
	}
}

func defaultUsers() []types.User {
	return []types.User{
		{ID: "admin1", Username: "matlabi", Name: "آقای مطلبی", Role: types.RoleAdmin, Title: "مدیر اصلی", Order: 1, AvatarColor: "bg-blue-600"},
		{ID: "admin2", Username: "kand", Name: "آقای کاند", Role: types.RoleAdmin, Title: "مدیر اصلی", Order: 2, AvatarColor: "bg-indigo-600"},
		{ID: "admin3", Username: "mahlouji", Name: "آقای مهلوجی", Role: types.RoleAdmin, Title: "مسئول مالی", Order: 3, AvatarColor: "bg-teal-600"},
		{ID: "staff1", Username: "mostafavi", Name: "آقای مصطفوی", Role: types.RoleAdmin, Title: "سوپروایزر", Order: 4, AvatarColor: "bg-cyan-600"},
		{ID: "staff2", Username: "farid", Name: "خانم فرید", Role: types.RoleStaff, Title: "پرسنل", Order: 5, AvatarColor: "bg-pink-500"},
		{ID: "staff3", Username: "sec", Name: "منشی‌ها", Role: types.RoleStaff, Title: "منشی بخش", Order: 6, AvatarColor: "bg-purple-500"},
	}
}

func defaultQuestions() []types.Question {
	return []types.Question{
		{ID: "q1", Order: 1, Type: types.QuestionYesNo, Text: "آیا آموزش‌های حین ترخیص به بیمار داده شده است؟", Visibility: types.VisibilityAll, Category: types.CategoryDischarge},
		{ID: "q2", Order: 2, Type: types.QuestionYesNo, Text: "آیا بیمار از نوع رژیم غذایی خود اطلاع دارد؟", Visibility: types.VisibilityAll, Category: types.CategoryDischarge},
		{ID: "q3", Order: 3, Type: types.QuestionYesNo, Text: "آیا بیمار از نحوه مصرف داروهای خود در منزل اطلاع دارد؟", Visibility: types.VisibilityAll, Category: types.CategoryDischarge},
		{ID: "q4", Order: 4, Type: types.QuestionYesNo, Text: "آیا بیمار وضعیت حرکتی خود در منزل را می‌داند؟", Visibility: types.VisibilityAll, Category: types.CategoryDischarge},
		{ID: "q5", Order: 5, Type: types.QuestionYesNo, Text: "آیا زمان و مکان مراجعه مجدد به پزشک را می‌دانید؟", Visibility: types.VisibilityAll, Category: types.CategoryDischarge},
		{ID: "q6", Order: 6, Type: types.QuestionYesNo, Text: "آیا مراقبت‌های لازم در منزل (زخم، عضو آسیب دیده و...) را می‌دانید؟", Visibility: types.VisibilityAll, Category: types.CategoryDischarge},
		{ID: "q7", Order: 7, Type: types.QuestionYesNo, Text: "(در صورت جراحی) آیا محل عمل فاقد قرمزی و ترشح است؟", Visibility: types.VisibilityAll, Category: types.CategoryDischarge},
		{ID: "q8", Order: 8, Type: types.QuestionYesNo, Text: "آیا آموزش و راهنمایی‌های ارائه شده واضح بود؟", Visibility: types.VisibilityAll, Category: types.CategoryAll},
		{ID: "q9", Order: 9, Type: types.QuestionYesNo, Text: "آیا اطلاعات ارائه شده توسط پزشکان کامل و قابل قبول بود؟", Visibility: types.VisibilityAll, Category: types.CategoryAll},
		{ID: "q10", Order: 10, Type: types.QuestionYesNo, Text: "آیا از آموزش‌های پزشک در بخش رضایت دارید؟", Visibility: types.VisibilityAll, Category: types.CategoryAll},
		{ID: "q11", Order: 11, Type: types.QuestionYesNo, Text: "آیا از آموزش‌های پرستار در بخش رضایت دارید؟", Visibility: types.VisibilityAll, Category: types.CategoryAll},
		{ID: "q12", Order: 12, Type: types.QuestionYesNo, Text: "آیا از اقدامات واحد پذیرش و توضیحات آن رضایت دارید؟", Visibility: types.VisibilityAll, Category: types.CategoryInpatient},
		{ID: "q13", Order: 13, Type: types.QuestionYesNo, Text: "آیا از عملکرد اورژانس (از ورود تا بستری در بخش/ICU) رضایت دارید؟", Visibility: types.VisibilityAll, Category: types.CategoryInpatient},
		{ID: "q14", Order: 14, Type: types.QuestionYesNo, Text: "آیا از واحد ترخیص و مالی و توضیحات آن رضایت دارید؟", Visibility: types.VisibilityAll, Category: types.CategoryDischarge},
		{ID: "q15", Order: 15, Type: types.QuestionYesNo, Text: "آیا به طور کلی از خدمات بیمارستان راضی بودید؟", Visibility: types.VisibilityAll, Category: types.CategoryDischarge},
		{ID: "q16", Order: 16, Type: types.QuestionYesNo, Text: "آیا نیاز به آموزش مجدد دارید؟", Visibility: types.VisibilityAll, Category: types.CategoryDischarge},
		{ID: "q17", Order: 17, Type: types.QuestionYesNo, Text: "آیا به ادامه پیگیری تلفنی تمایل دارید؟", Visibility: types.VisibilityAll, Category: types.CategoryAll},
		{ID: "q_cleaning", Order: 18, Type: types.QuestionLikert, Text: "نظافت اتاق و سرویس", Visibility: types.VisibilityAll, Category: types.CategoryAll},
		{ID: "q_response", Order: 19, Type: types.QuestionLikert, Text: "سرعت پاسخگویی به احضار", Visibility: types.VisibilityAll, Category: types.CategoryAll},
		{ID: "q_food", Order: 20, Type: types.QuestionLikert, Text: "کیفیت غذای بیمار", Visibility: types.VisibilityAll, Category: types.CategoryAll},
		{ID: "q_nps", Order: 21, Type: types.QuestionNPS, Text: "چقدر احتمال دارد این بیمارستان را به دیگران معرفی کنید؟", Visibility: types.VisibilityAll, Category: types.CategoryAll},
		{ID: "q_comment", Order: 22, Type: types.QuestionText, Text: "نظرات و پیشنهادات تکمیلی", Visibility: types.VisibilityAll, Category: types.CategoryAll},
	}
}
