package i18n

// Keys used by the backend when it writes notifications, SMS and chat
// replies. The UI dictionary below them is served as-is to the dashboards.
const (
	KeyWelcomeTitle   = "notify.welcome.title"
	KeyWelcomeMessage = "notify.welcome.message"

	KeyApplicationReceivedTitle   = "notify.application_received.title"
	KeyApplicationReceivedMessage = "notify.application_received.message"
	KeyApplicationNewTitle        = "notify.application_new.title"
	KeyApplicationNewMessage      = "notify.application_new.message"
	KeyApplicationApprovedTitle   = "notify.application_approved.title"
	KeyApplicationApprovedMessage = "notify.application_approved.message"
	KeyApplicationRejectedTitle   = "notify.application_rejected.title"
	KeyApplicationRejectedMessage = "notify.application_rejected.message"

	KeyProfileUpdatedTitle   = "notify.profile_updated.title"
	KeyProfileUpdatedMessage = "notify.profile_updated.message"
	KeyAvailabilityTitle     = "notify.availability.title"
	KeyAvailabilityMessage   = "notify.availability.message"

	KeyServiceSubmittedTitle   = "notify.service_submitted.title"
	KeyServiceSubmittedMessage = "notify.service_submitted.message"
	KeyServiceNewTitle         = "notify.service_new.title"
	KeyServiceNewMessage       = "notify.service_new.message"
	KeyServiceApprovedTitle    = "notify.service_approved.title"
	KeyServiceApprovedMessage  = "notify.service_approved.message"
	KeyServiceRejectedTitle    = "notify.service_rejected.title"
	KeyServiceRejectedMessage  = "notify.service_rejected.message"

	KeyJobNewTitle         = "notify.job_new.title"
	KeyJobNewMessage       = "notify.job_new.message"
	KeyJobBookedTitle      = "notify.job_booked.title"
	KeyJobBookedMessage    = "notify.job_booked.message"
	KeyJobUpdateTitle      = "notify.job_update.title"
	KeyJobUpdateMessage    = "notify.job_update.message"
	KeyJobCompletedTitle   = "notify.job_completed.title"
	KeyJobCompletedMessage = "notify.job_completed.message"

	KeyPaymentMadeTitle       = "notify.payment_made.title"
	KeyPaymentMadeMessage     = "notify.payment_made.message"
	KeyPaymentReceivedTitle   = "notify.payment_received.title"
	KeyPaymentReceivedMessage = "notify.payment_received.message"
	KeyCashbackMessage        = "notify.cashback.message"
	KeyWalletCreditedTitle    = "notify.wallet_credited.title"
	KeyWalletCreditedMessage  = "notify.wallet_credited.message"
	KeyOfferAppliedTitle      = "notify.offer_applied.title"
	KeyOfferAppliedMessage    = "notify.offer_applied.message"

	KeyNewMessageTitle = "notify.new_message.title"

	KeyRealtimeUpdateTitle      = "realtime.update.title"
	KeyRealtimeUpdateMessage    = "realtime.update.message"
	KeyRealtimeJobTitle         = "realtime.job_update.title"
	KeyRealtimeJobMessage       = "realtime.job_update.message"
	KeyRealtimeEarningsTitle    = "realtime.earnings.title"
	KeyRealtimeEarningsMessage  = "realtime.earnings.message"
	KeyRealtimeRequestTitle     = "realtime.job_request.title"
	KeyRealtimeRequestMessage   = "realtime.job_request.message"
	KeyRealtimeApprovalsTitle   = "realtime.approvals.title"
	KeyRealtimeApprovalsMessage = "realtime.approvals.message"

	KeyChatAutoReply = "chat.auto_reply"
	KeySMSEmergency  = "sms.emergency"

	KeyTxTopUp      = "wallet.tx.topup"
	KeyTxBonus      = "wallet.tx.bonus"
	KeyTxJobPayment = "wallet.tx.job_payment"
	KeyTxCashback   = "wallet.tx.cashback"
)

var english = map[string]string{
	KeyWelcomeTitle:   "Welcome to SparkHub",
	KeyWelcomeMessage: "Hello %s, your account is ready",

	KeyApplicationReceivedTitle:   "Application Received",
	KeyApplicationReceivedMessage: "Your electrician application is awaiting admin approval",
	KeyApplicationNewTitle:        "New Electrician Application",
	KeyApplicationNewMessage:      "%s has applied to join as an electrician",
	KeyApplicationApprovedTitle:   "Application Approved",
	KeyApplicationApprovedMessage: "Your electrician application has been approved",
	KeyApplicationRejectedTitle:   "Application Rejected",
	KeyApplicationRejectedMessage: "Your electrician application has been rejected",

	KeyProfileUpdatedTitle:   "Profile Updated",
	KeyProfileUpdatedMessage: "Your profile changes have been saved",
	KeyAvailabilityTitle:     "Availability Changed",
	KeyAvailabilityMessage:   "You are now %s",

	KeyServiceSubmittedTitle:   "Service Submitted",
	KeyServiceSubmittedMessage: "%s is awaiting admin approval",
	KeyServiceNewTitle:         "New Service Request",
	KeyServiceNewMessage:       "%s was proposed and needs review",
	KeyServiceApprovedTitle:    "Service Approved",
	KeyServiceApprovedMessage:  "%s is now live for customers",
	KeyServiceRejectedTitle:    "Service Rejected",
	KeyServiceRejectedMessage:  "%s was not approved",

	KeyJobNewTitle:         "New Job",
	KeyJobNewMessage:       "A new job has arrived for you",
	KeyJobBookedTitle:      "Booking Placed",
	KeyJobBookedMessage:    "Your booking for %s is waiting for the electrician",
	KeyJobUpdateTitle:      "Job Update",
	KeyJobUpdateMessage:    "Job status updated: %s",
	KeyJobCompletedTitle:   "Job Completed",
	KeyJobCompletedMessage: "Job completed for %s",

	KeyPaymentMadeTitle:       "Payment Successful",
	KeyPaymentMadeMessage:     "You paid %s",
	KeyPaymentReceivedTitle:   "Payment Received",
	KeyPaymentReceivedMessage: "You received %s",
	KeyCashbackMessage:        "Cashback of %s added to your wallet",
	KeyWalletCreditedTitle:    "Success!",
	KeyWalletCreditedMessage:  "%s added to wallet",
	KeyOfferAppliedTitle:      "Offer Applied",
	KeyOfferAppliedMessage:    "%s applied successfully",

	KeyNewMessageTitle: "New Message",

	KeyRealtimeUpdateTitle:      "New Update",
	KeyRealtimeUpdateMessage:    "There is new information for you",
	KeyRealtimeJobTitle:         "Job Update",
	KeyRealtimeJobMessage:       "Your job status has changed",
	KeyRealtimeEarningsTitle:    "Earnings Update",
	KeyRealtimeEarningsMessage:  "Your earnings so far: %s",
	KeyRealtimeRequestTitle:     "Job Requests",
	KeyRealtimeRequestMessage:   "Customers near you are looking for electricians",
	KeyRealtimeApprovalsTitle:   "Pending Approvals",
	KeyRealtimeApprovalsMessage: "%d items are waiting for review",

	KeyChatAutoReply: "Thank you! I will respond soon.",
	KeySMSEmergency:  "EMERGENCY booking %s: %s at %s. Please respond now.",

	KeyTxTopUp:      "Wallet Recharge",
	KeyTxBonus:      "Offer Bonus",
	KeyTxJobPayment: "%s Payment",
	KeyTxCashback:   "Cashback",

	"offer.first20.title":       "20% Cashback",
	"offer.first20.description": "20% cashback on your first booking",
	"offer.add500.title":        "₹100 Bonus",
	"offer.add500.description":  "Get ₹100 extra when you add ₹500",

	// Common
	"login":         "Login",
	"signup":        "Sign Up",
	"logout":        "Logout",
	"submit":        "Submit",
	"cancel":        "Cancel",
	"save":          "Save",
	"delete":        "Delete",
	"edit":          "Edit",
	"search":        "Search",
	"filter":        "Filter",
	"back":          "Back",
	"next":          "Next",
	"loading":       "Loading...",
	"error":         "Error",
	"success":       "Success",
	"language":      "Language",
	"settings":      "Settings",
	"profile":       "Profile",
	"notifications": "Notifications",
	"help":          "Help",
	"about":         "About",

	// Auth
	"phone_number": "Phone Number",
	"select_role":  "Select Role",
	"customer":     "Customer",
	"electrician":  "Electrician",
	"admin":        "Admin",

	// Customer
	"find_electricians": "Find Electricians",
	"book_service":      "Book Service",
	"my_bookings":       "My Bookings",
	"distance":          "Distance",
	"experience":        "Experience",
	"rating":            "Rating",
	"services":          "Services",
	"view_profile":      "View Profile",
	"book_now":          "Book Now",
	"track_job":         "Track Job",
	"rate_service":      "Rate Service",
	"chat":              "Chat",
	"payment":           "Payment",
	"emergency":         "Emergency",
	"wallet":            "Wallet",
	"reviews":           "Reviews",
	"complaints":        "Complaints",

	// Electrician
	"my_profile":    "My Profile",
	"job_requests":  "Job Requests",
	"active_jobs":   "Active Jobs",
	"earnings":      "Earnings",
	"portfolio":     "Portfolio",
	"accept":        "Accept",
	"reject":        "Reject",
	"start_job":     "Start Job",
	"complete_job":  "Complete Job",
	"upload_images": "Upload Images",
	"availability":  "Availability",
	"available":     "Available",
	"unavailable":   "Unavailable",

	// Admin
	"dashboard":            "Dashboard",
	"manage_users":         "Manage Users",
	"approve_electricians": "Approve Electricians",
	"service_charges":      "Service Charges",
	"analytics":            "Analytics",
	"system_settings":      "System Settings",
	"total_users":          "Total Users",
	"total_jobs":           "Total Jobs",
	"revenue":              "Revenue",
	"pending_approvals":    "Pending Approvals",

	// Job status
	"pending":     "Pending",
	"accepted":    "Accepted",
	"in_progress": "In Progress",
	"completed":   "Completed",
	"cancelled":   "Cancelled",

	// Pricing
	"years_experience": "years experience",
	"km_away":          "km away",
	"per_hour":         "per hour",
	"base_charge":      "Base Charge",
	"distance_charge":  "Distance Charge",
	"urgency_charge":   "Urgency Charge",
	"total_amount":     "Total Amount",
	"payment_method":   "Payment Method",
	"online_payment":   "Online Payment",
	"cash_payment":     "Cash Payment",
	"wallet_payment":   "Wallet Payment",
}

var hindi = map[string]string{
	KeyWelcomeTitle:   "SparkHub में आपका स्वागत है",
	KeyWelcomeMessage: "नमस्ते %s, आपका खाता तैयार है",

	KeyApplicationReceivedTitle:   "आवेदन प्राप्त हुआ",
	KeyApplicationReceivedMessage: "आपका इलेक्ट्रीशियन आवेदन एडमिन अप्रूवल की प्रतीक्षा में है",
	KeyApplicationNewTitle:        "नया इलेक्ट्रीशियन आवेदन",
	KeyApplicationNewMessage:      "%s ने इलेक्ट्रीशियन के रूप में आवेदन किया है",
	KeyApplicationApprovedTitle:   "आवेदन स्वीकृत",
	KeyApplicationApprovedMessage: "आपका इलेक्ट्रीशियन आवेदन स्वीकार कर लिया गया है",
	KeyApplicationRejectedTitle:   "आवेदन अस्वीकृत",
	KeyApplicationRejectedMessage: "आपका इलेक्ट्रीशियन आवेदन अस्वीकार कर दिया गया है",

	KeyProfileUpdatedTitle:   "प्रोफाइल अपडेट",
	KeyProfileUpdatedMessage: "आपके प्रोफाइल बदलाव सेव हो गए हैं",
	KeyAvailabilityTitle:     "उपलब्धता बदली",
	KeyAvailabilityMessage:   "अब आप %s हैं",

	KeyServiceSubmittedTitle:   "सर्विस सबमिट हुई",
	KeyServiceSubmittedMessage: "%s एडमिन अप्रूवल की प्रतीक्षा में है",
	KeyServiceNewTitle:         "नई सर्विस रिक्वेस्ट",
	KeyServiceNewMessage:       "%s प्रस्तावित की गई है, समीक्षा करें",
	KeyServiceApprovedTitle:    "सर्विस स्वीकृत",
	KeyServiceApprovedMessage:  "%s अब ग्राहकों के लिए उपलब्ध है",
	KeyServiceRejectedTitle:    "सर्विस अस्वीकृत",
	KeyServiceRejectedMessage:  "%s स्वीकृत नहीं हुई",

	KeyJobNewTitle:         "नई जॉब",
	KeyJobNewMessage:       "आपके लिए एक नई जॉब आई है",
	KeyJobBookedTitle:      "बुकिंग हो गई",
	KeyJobBookedMessage:    "%s की आपकी बुकिंग इलेक्ट्रीशियन की प्रतीक्षा में है",
	KeyJobUpdateTitle:      "जॉब अपडेट",
	KeyJobUpdateMessage:    "आपकी जॉब का स्टेटस अपडेट हुआ: %s",
	KeyJobCompletedTitle:   "जॉब पूरी हुई",
	KeyJobCompletedMessage: "%s की जॉब पूरी हो गई",

	KeyPaymentMadeTitle:       "भुगतान सफल",
	KeyPaymentMadeMessage:     "आपने %s का भुगतान किया",
	KeyPaymentReceivedTitle:   "भुगतान प्राप्त",
	KeyPaymentReceivedMessage: "आपको %s प्राप्त हुए",
	KeyCashbackMessage:        "%s का कैशबैक आपके वॉलेट में जोड़ा गया",
	KeyWalletCreditedTitle:    "सफल!",
	KeyWalletCreditedMessage:  "%s वॉलेट में जोड़े गए",
	KeyOfferAppliedTitle:      "ऑफर लागू किया गया",
	KeyOfferAppliedMessage:    "%s सफलतापूर्वक लागू हुआ",

	KeyNewMessageTitle: "नया संदेश",

	KeyRealtimeUpdateTitle:      "नया अपडेट",
	KeyRealtimeUpdateMessage:    "आपके लिए नई जानकारी है",
	KeyRealtimeJobTitle:         "जॉब अपडेट",
	KeyRealtimeJobMessage:       "आपकी जॉब का स्टेटस बदला है",
	KeyRealtimeEarningsTitle:    "कमाई अपडेट",
	KeyRealtimeEarningsMessage:  "अब तक की आपकी कमाई: %s",
	KeyRealtimeRequestTitle:     "जॉब रिक्वेस्ट",
	KeyRealtimeRequestMessage:   "आपके पास के ग्राहक इलेक्ट्रीशियन खोज रहे हैं",
	KeyRealtimeApprovalsTitle:   "पेंडिंग अप्रूवल",
	KeyRealtimeApprovalsMessage: "%d आइटम समीक्षा की प्रतीक्षा में हैं",

	KeyChatAutoReply: "धन्यवाद! मैं जल्दी जवाब दूंगा।",
	KeySMSEmergency:  "आपातकालीन बुकिंग %s: %s, %s पर। कृपया तुरंत जवाब दें।",

	KeyTxTopUp:      "वॉलेट रिचार्ज",
	KeyTxBonus:      "ऑफर बोनस",
	KeyTxJobPayment: "%s भुगतान",
	KeyTxCashback:   "कैशबैक",

	"offer.first20.title":       "20% कैशबैक",
	"offer.first20.description": "पहली बुकिंग पर 20% कैशबैक",
	"offer.add500.title":        "₹100 बोनस",
	"offer.add500.description":  "₹500 जोड़ने पर ₹100 अतिरिक्त पाएं",

	// Common
	"login":         "लॉगिन",
	"signup":        "साइनअप",
	"logout":        "लॉगआउट",
	"submit":        "सबमिट",
	"cancel":        "रद्द करें",
	"save":          "सेव करें",
	"delete":        "डिलीट",
	"edit":          "एडिट",
	"search":        "खोजें",
	"filter":        "फ़िल्टर",
	"back":          "वापस",
	"next":          "आगे",
	"loading":       "लोड हो रहा है...",
	"error":         "त्रुटि",
	"success":       "सफल",
	"language":      "भाषा",
	"settings":      "सेटिंग्स",
	"profile":       "प्रोफाइल",
	"notifications": "नोटिफिकेशन",
	"help":          "सहायता",
	"about":         "के बारे में",

	// Auth
	"phone_number": "मोबाइल नंबर",
	"select_role":  "भूमिका चुनें",
	"customer":     "कस्टमर",
	"electrician":  "इलेक्ट्रीशियन",
	"admin":        "एडमिन",

	// Customer
	"find_electricians": "इलेक्ट्रीशियन खोजें",
	"book_service":      "सर्विस बुक करें",
	"my_bookings":       "मेरी बुकिंग",
	"distance":          "दूरी",
	"experience":        "अनुभव",
	"rating":            "रेटिंग",
	"services":          "सेवाएं",
	"view_profile":      "प्रोफाइल देखें",
	"book_now":          "अभी बुक करें",
	"track_job":         "जॉब ट्रैक करें",
	"rate_service":      "सर्विस रेट करें",
	"chat":              "चैट",
	"payment":           "भुगतान",
	"emergency":         "आपातकाल",
	"wallet":            "वॉलेट",
	"reviews":           "रिव्यू",
	"complaints":        "शिकायत",

	// Electrician
	"my_profile":    "मेरा प्रोफाइल",
	"job_requests":  "जॉब रिक्वेस्ट",
	"active_jobs":   "एक्टिव जॉब्स",
	"earnings":      "कमाई",
	"portfolio":     "पोर्टफोलियो",
	"accept":        "स्वीकार करें",
	"reject":        "अस्वीकार करें",
	"start_job":     "जॉब शुरू करें",
	"complete_job":  "जॉब पूरा करें",
	"upload_images": "तस्वीरें अपलोड करें",
	"availability":  "उपलब्धता",
	"available":     "उपलब्ध",
	"unavailable":   "अनुपलब्ध",

	// Admin
	"dashboard":            "डैशबोर्ड",
	"manage_users":         "यूजर प्रबंधन",
	"approve_electricians": "इलेक्ट्रीशियन अप्रूव करें",
	"service_charges":      "सर्विस चार्ज",
	"analytics":            "एनालिटिक्स",
	"system_settings":      "सिस्टम सेटिंग्स",
	"total_users":          "कुल यूजर",
	"total_jobs":           "कुल जॉब्स",
	"revenue":              "आय",
	"pending_approvals":    "पेंडिंग अप्रूवल",

	// Job status
	"pending":     "पेंडिंग",
	"accepted":    "स्वीकार किया",
	"in_progress": "प्रगति में",
	"completed":   "पूरा हुआ",
	"cancelled":   "रद्द",

	// Pricing
	"years_experience": "साल का अनुभव",
	"km_away":          "किमी दूर",
	"per_hour":         "प्रति घंटे",
	"base_charge":      "मूल शुल्क",
	"distance_charge":  "दूरी शुल्क",
	"total_amount":     "कुल राशि",
	"payment_method":   "भुगतान विधि",
	"online_payment":   "ऑनलाइन भुगतान",
	"cash_payment":     "नकद भुगतान",
	"wallet_payment":   "वॉलेट भुगतान",
}
